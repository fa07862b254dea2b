// Package services – LessonService
//
// This file implements gated lesson-content reads: the lesson body plus the
// caller's progress for it and the id of the next lesson in course order.
// Existence is resolved before the gate, and a lesson under a different
// course than the route names is treated as nonexistent.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/repo"
)

// LessonView is the gated lesson payload returned to an entitled user.
type LessonView struct {
	ID           string             `json:"id"`
	CourseID     string             `json:"course_id"`
	Title        string             `json:"title"`
	Content      string             `json:"content,omitempty"`
	VideoURL     string             `json:"video_url,omitempty"`
	Order        int                `json:"order"`
	NextLessonID *string            `json:"next_lesson_id"`
	Progress     LessonProgressView `json:"progress"`
}

// LessonProgressView is the caller's completion state embedded in a lesson
// payload. Zero-valued when the user has never touched the lesson.
type LessonProgressView struct {
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completed_at"`
}

// LessonService serves entitlement-gated lesson content.
type LessonService struct {
	// DB is the database handle used for lesson reads.
	DB *gorm.DB
	// Gate guards content access per course.
	Gate *AccessGate
}

// Get returns the full lesson body for userID.
//
// Semantics:
//   - lessonID must exist; otherwise ErrLessonNotFound (checked first).
//   - userID must own the lesson's course; otherwise ErrCourseNotPurchased.
//   - NextLessonID is the lesson with the smallest order greater than this
//     one within the same course, nil at the end of the course.
func (s *LessonService) Get(ctx context.Context, userID, lessonID string) (*LessonView, error) {
	lesson, err := repo.GetLesson(ctx, s.DB, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	if err := s.Gate.require(ctx, userID, lesson.CourseID); err != nil {
		return nil, err
	}

	progress, err := repo.GetProgressOrZero(ctx, s.DB, userID, lessonID)
	if err != nil {
		return nil, err
	}
	next, err := repo.NextLesson(ctx, s.DB, lesson.CourseID, lesson.Order)
	if err != nil {
		return nil, err
	}

	view := &LessonView{
		ID:       lesson.ID,
		CourseID: lesson.CourseID,
		Title:    lesson.Title,
		Content:  lesson.Content,
		VideoURL: lesson.VideoURL,
		Order:    lesson.Order,
		Progress: LessonProgressView{Completed: progress.Completed},
	}
	if next != nil {
		id := next.ID
		view.NextLessonID = &id
	}
	if progress.CompletedAt != nil {
		t := progress.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		view.Progress.CompletedAt = &t
	}
	return view, nil
}
