// Package services – ProgressService
//
// This file implements the progress tracker: per-lesson completion upserts
// and the derived aggregate course percentage. Both operations run behind
// the AccessGate; existence checks come first so a 403 never doubles as an
// existence oracle. The aggregate is computed at read time from the current
// progress rows, so it is always consistent with the latest writes.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// course/user identifiers.
package services

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/domain"
	"github.com/matrix-academy/go-course-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CourseProgress is the derived completion view for one (user, course) pair.
// It is never persisted.
type CourseProgress struct {
	CompletedCount int64 `json:"completed_count"`
	TotalCount     int64 `json:"total_count"`
	Percentage     int   `json:"percentage"`
}

// ProgressService coordinates lesson-completion writes and aggregate reads.
type ProgressService struct {
	// DB is the database handle used for all progress operations.
	DB *gorm.DB
	// Gate guards every operation on behalf of the calling user.
	Gate *AccessGate
}

// SetLessonProgress upserts the completion state for (userID, lessonID).
//
// Semantics and validation:
//   - The lesson must exist AND belong to courseID; a mismatch between the
//     two route identifiers yields ErrLessonNotFound, checked before the
//     entitlement so the gate cannot leak lesson existence.
//   - userID must hold an entitlement for courseID; otherwise
//     ErrCourseNotPurchased.
//   - completed=true stamps CompletedAt with the current time (a repeat
//     true-write refreshes the stamp — "most recent completion", not
//     "first"); completed=false clears it.
//
// The write is idempotent: repeating it leaves the same stored state.
func (s *ProgressService) SetLessonProgress(ctx context.Context, userID, courseID, lessonID string, completed bool) (*domain.LessonProgress, error) {
	tr := otel.Tracer("services/ProgressService")
	ctx, span := tr.Start(ctx, "SetLessonProgress",
		trace.WithAttributes(
			attribute.String("course.id", courseID),
			attribute.String("lesson.id", lessonID),
			attribute.String("user.id", userID),
			attribute.Bool("progress.completed", completed),
		),
	)
	defer span.End()

	if _, err := repo.GetLessonInCourse(ctx, s.DB, lessonID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	if err := s.Gate.require(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return repo.UpsertProgress(ctx, s.DB, userID, lessonID, completed)
}

// GetCourseProgress computes the aggregate completion view for
// (userID, courseID).
//
// Semantics:
//   - The course must exist (ErrCourseNotFound) and be owned
//     (ErrCourseNotPurchased), in that order.
//   - percentage = round(100 * completed / total); a course with no lessons
//     reports 0 rather than dividing by zero.
func (s *ProgressService) GetCourseProgress(ctx context.Context, userID, courseID string) (*CourseProgress, error) {
	tr := otel.Tracer("services/ProgressService")
	ctx, span := tr.Start(ctx, "GetCourseProgress",
		trace.WithAttributes(
			attribute.String("course.id", courseID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if _, err := repo.GetCourse(ctx, s.DB, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if err := s.Gate.require(ctx, userID, courseID); err != nil {
		return nil, err
	}

	total, err := repo.CountLessons(ctx, s.DB, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := repo.CountCompleted(ctx, s.DB, userID, courseID)
	if err != nil {
		return nil, err
	}

	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(completed) / float64(total)))
	}
	return &CourseProgress{
		CompletedCount: completed,
		TotalCount:     total,
		Percentage:     pct,
	}, nil
}
