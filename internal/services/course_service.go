// Package services – CourseService
//
// This file implements the public catalog reads: course metadata lists and
// the course detail view with ordered lesson titles. Nothing here is gated;
// lesson bodies are deliberately absent from these shapes (see
// LessonService for the gated surface).
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/repo"
)

// LessonSummary is the ungated lesson slice of a course detail: title and
// position only, no content.
type LessonSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// CourseDetail is the public course view: metadata plus the ordered lesson
// outline.
type CourseDetail struct {
	CourseSummary
	LessonCount int             `json:"lesson_count"`
	Lessons     []LessonSummary `json:"lessons"`
}

// CourseService provides catalog-level reads. Courses are never mutated by
// this service.
type CourseService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// ListPage returns a page of course summaries (most recent first) and the
// catalog total. It applies defaults for invalid page/pageSize.
func (s *CourseService) ListPage(ctx context.Context, page, pageSize int) ([]CourseSummary, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountCourses(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []CourseSummary{}, 0, nil
	}

	rows, err := repo.ListCoursesPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CourseSummary, 0, len(rows))
	for i := range rows {
		out = append(out, summarize(&rows[i]))
	}
	return out, total, nil
}

// Get returns the public detail view for courseID, or ErrCourseNotFound.
func (s *CourseService) Get(ctx context.Context, courseID string) (*CourseDetail, error) {
	course, err := repo.GetCourse(ctx, s.DB, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	lessons, err := repo.ListLessons(ctx, s.DB, courseID)
	if err != nil {
		return nil, err
	}
	outline := make([]LessonSummary, 0, len(lessons))
	for _, l := range lessons {
		outline = append(outline, LessonSummary{ID: l.ID, Title: l.Title, Order: l.Order})
	}

	return &CourseDetail{
		CourseSummary: summarize(course),
		LessonCount:   len(outline),
		Lessons:       outline,
	}, nil
}
