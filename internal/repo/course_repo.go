// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Course
// model (catalog metadata — never mutated by this service).
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/domain"
)

// GetCourse fetches a course by ID, or ErrNotFound.
func GetCourse(ctx context.Context, db *gorm.DB, id string) (*domain.Course, error) {
	var c domain.Course
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCoursesPage returns a paginated slice of courses ordered by creation
// time descending. Use CountCourses for pagination metadata.
func ListCoursesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Course, error) {
	var out []domain.Course
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountCourses returns the total number of courses in the catalog.
func CountCourses(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Course{}).
		Count(&total).Error
	return total, err
}

// CountLessons returns the number of lessons belonging to courseID. A course
// with no lessons yields 0, not an error.
func CountLessons(ctx context.Context, db *gorm.DB, courseID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&total).Error
	return total, err
}
