// Package services – CheckoutService
//
// This file implements the thin wrapper over the payment-provider boundary:
// resolve the course, validate its price, and ask the SessionCreator for a
// redirect target. The session metadata (userId, courseId) set here is the
// contract with the webhook processor — the provider echoes it back
// verbatim in the confirmation event.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/payments"
	"github.com/matrix-academy/go-course-backend/internal/repo"
)

// CheckoutService opens provider checkout sessions for course purchases.
type CheckoutService struct {
	// DB is the database handle used for course lookups.
	DB *gorm.DB
	// Sessions is the external provider boundary.
	Sessions payments.SessionCreator
	// FrontendURL is the base used to build success/cancel redirects.
	FrontendURL string
}

// CheckoutSession is the descriptor handed to the client; it consumes the
// session out of band by following URL.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateSession opens a checkout session for userID buying courseID.
//
// Semantics:
//   - The course must exist; otherwise ErrCourseNotFound.
//   - The price must round to a positive cent amount; otherwise
//     ErrInvalidPrice (a zero-priced course has no checkout flow).
//   - Provider failures are returned raw for the handler to surface as 5xx.
func (s *CheckoutService) CreateSession(ctx context.Context, userID, courseID string) (*CheckoutSession, error) {
	course, err := repo.GetCourse(ctx, s.DB, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	cents := int64(math.Round(course.Price * 100))
	if cents <= 0 {
		return nil, ErrInvalidPrice
	}

	sess, err := s.Sessions.CreateSession(ctx, payments.SessionParams{
		UserID:          userID,
		CourseID:        course.ID,
		CourseTitle:     course.Title,
		CourseDesc:      course.Description,
		UnitAmountCents: cents,
		SuccessURL:      fmt.Sprintf("%s/courses/%s?success=1", s.FrontendURL, course.ID),
		CancelURL:       fmt.Sprintf("%s/courses/%s?canceled=1", s.FrontendURL, course.ID),
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}
