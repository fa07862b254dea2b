// Package services – PurchaseService
//
// This file implements the direct purchase path and the read side of the
// entitlement store: issuing a grant without a payment provider (manual or
// development flows), checking ownership, and listing a user's purchases.
// A repeated purchase is a normal outcome ("you already own this"), never an
// error — the uniqueness race is settled inside repo.GrantPurchase by the
// database constraint, so two near-simultaneous buyers of the same course
// converge on one row.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/domain"
	"github.com/matrix-academy/go-course-backend/internal/repo"
)

// CourseSummary is the course slice embedded in purchase views.
type CourseSummary struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	ImageURL       string  `json:"image_url,omitempty"`
	InstructorName string  `json:"instructor_name,omitempty"`
}

// PurchaseResult is the outcome of a direct purchase. Granted is true only
// when this call created the entitlement; a repeat purchase returns the
// pre-existing record with Granted=false.
type PurchaseResult struct {
	Granted     bool          `json:"granted"`
	PurchaseID  string        `json:"purchase_id"`
	PurchasedAt time.Time     `json:"purchased_at"`
	Course      CourseSummary `json:"course"`
}

// PurchaseRecord is one row of the "my purchases" view.
type PurchaseRecord struct {
	PurchaseID  string        `json:"purchase_id"`
	PurchasedAt time.Time     `json:"purchased_at"`
	Course      CourseSummary `json:"course"`
}

// PurchaseService implements the synchronous entitlement-granting path and
// purchase reads. It is safe for concurrent use.
type PurchaseService struct {
	// DB is the database handle used for all purchase operations.
	DB *gorm.DB
}

// Purchase grants userID an entitlement for courseID without a payment
// reference.
//
// Semantics:
//   - The course must exist; otherwise ErrCourseNotFound.
//   - A first grant returns Granted=true with the new record.
//   - Any later attempt (including one that loses a concurrent race) returns
//     Granted=false with the original record and the same purchase id.
//   - Only infrastructure failures surface as errors.
func (s *PurchaseService) Purchase(ctx context.Context, userID, courseID string) (*PurchaseResult, error) {
	course, err := repo.GetCourse(ctx, s.DB, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	p, status, err := repo.GrantPurchase(ctx, s.DB, userID, courseID, nil)
	if err != nil {
		return nil, err
	}

	res := &PurchaseResult{
		Granted:     status == repo.GrantCreated,
		PurchaseID:  p.ID,
		PurchasedAt: p.CreatedAt,
		Course:      summarize(course),
	}
	if res.Granted {
		grantsTotal.WithLabelValues("direct", "created").Inc()
	} else {
		grantsTotal.WithLabelValues("direct", "already_owned").Inc()
	}
	return res, nil
}

// HasPurchased reports whether userID owns courseID, along with the grant
// time when they do. It intentionally performs no course-existence check:
// the answer for an unknown course is simply "no".
func (s *PurchaseService) HasPurchased(ctx context.Context, userID, courseID string) (bool, *time.Time, error) {
	p, err := repo.GetPurchase(ctx, s.DB, userID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	t := p.CreatedAt
	return true, &t, nil
}

// ListPage returns one page of the user's purchases (most recent first) and
// the total count for pagination metadata.
func (s *PurchaseService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]PurchaseRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountPurchases(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []PurchaseRecord{}, 0, nil
	}

	rows, err := repo.ListPurchasesPage(ctx, s.DB, userID, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PurchaseRecord, 0, len(rows))
	for _, p := range rows {
		out = append(out, PurchaseRecord{
			PurchaseID:  p.ID,
			PurchasedAt: p.CreatedAt,
			Course:      summarize(&p.Course),
		})
	}
	return out, total, nil
}

// summarize maps a course row to its public summary shape.
func summarize(c *domain.Course) CourseSummary {
	return CourseSummary{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		Price:          c.Price,
		ImageURL:       c.ImageURL,
		InstructorName: c.InstructorName,
	}
}
