// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Lesson
// model.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/domain"
)

// GetLesson fetches a lesson by ID, or ErrNotFound.
func GetLesson(ctx context.Context, db *gorm.DB, id string) (*domain.Lesson, error) {
	var l domain.Lesson
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLessonInCourse fetches a lesson by ID, additionally requiring that it
// belongs to courseID. A lesson that exists under a different course yields
// ErrNotFound — this defends against route parameter mismatches where the
// lesson id and course id disagree.
func GetLessonInCourse(ctx context.Context, db *gorm.DB, lessonID, courseID string) (*domain.Lesson, error) {
	var l domain.Lesson
	err := db.WithContext(ctx).
		Where("id = ? AND course_id = ?", lessonID, courseID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLessons returns all lessons of courseID ordered by their position
// (ascending). It returns an empty slice for a course with no lessons.
func ListLessons(ctx context.Context, db *gorm.DB, courseID string) ([]domain.Lesson, error) {
	var out []domain.Lesson
	err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("sort_order asc").
		Find(&out).Error
	return out, err
}

// NextLesson returns the lesson of courseID with the smallest position
// strictly greater than after. It returns (nil, nil) when the given position
// is the last one — absence of a successor is not an error.
func NextLesson(ctx context.Context, db *gorm.DB, courseID string, after int) (*domain.Lesson, error) {
	var l domain.Lesson
	err := db.WithContext(ctx).
		Where("course_id = ? AND sort_order > ?", courseID, after).
		Order("sort_order asc").
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
