// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// LessonProgress model.
//
// Progress writes are a single-statement upsert on the (user_id, lesson_id)
// unique index: concurrent writers for the same pair resolve to explicit
// last-write-wins with no application-level locking. Aggregates are computed
// at read time so the derived percentage can never drift from its source
// rows.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matrix-academy/go-course-backend/internal/domain"
)

// UpsertProgress creates or updates the completion record for
// (userID, lessonID).
//
// When completed is true, CompletedAt is set to the current UTC time — the
// stored value always reflects the most recent completion write, not the
// first. When completed is false, CompletedAt is cleared. Repeating the same
// write produces the same stored state.
//
// The write is one INSERT ... ON CONFLICT DO UPDATE against the unique
// (user_id, lesson_id) index, so a concurrent writer pair degrades to
// last-write-wins rather than a duplicate row or an error.
func UpsertProgress(ctx context.Context, db *gorm.DB, userID, lessonID string, completed bool) (*domain.LessonProgress, error) {
	now := time.Now().UTC()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}

	rec := &domain.LessonProgress{
		ID:          uuid.NewString(),
		UserID:      userID,
		LessonID:    lessonID,
		Completed:   completed,
		CompletedAt: completedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"completed":    completed,
				"completed_at": completedAt,
				"updated_at":   now,
			}),
		}).
		Create(rec).Error
	if err != nil {
		return nil, err
	}

	// The insert struct keeps its generated ID even when the conflict branch
	// ran; reload so callers see the persisted row.
	return GetProgress(ctx, db, userID, lessonID)
}

// GetProgress fetches the progress record for (userID, lessonID), or
// ErrNotFound when the user has never written progress for that lesson.
func GetProgress(ctx context.Context, db *gorm.DB, userID, lessonID string) (*domain.LessonProgress, error) {
	var p domain.LessonProgress
	err := db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProgressOrZero is GetProgress with the not-found case flattened to a
// zero-value record (completed=false, no timestamp) — the shape callers want
// when rendering a lesson the user simply has not touched yet.
func GetProgressOrZero(ctx context.Context, db *gorm.DB, userID, lessonID string) (*domain.LessonProgress, error) {
	p, err := GetProgress(ctx, db, userID, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.LessonProgress{UserID: userID, LessonID: lessonID}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CountCompleted returns the number of lessons in courseID that userID has
// marked completed. Rows for lessons outside the course never count, even if
// the user completed them.
func CountCompleted(ctx context.Context, db *gorm.DB, userID, courseID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ? AND lesson_progress.completed = ? AND lessons.course_id = ?",
			userID, true, courseID).
		Count(&total).Error
	return total, err
}
