package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/matrix-academy/go-course-backend/internal/domain"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := db.AutoMigrate(
		&domain.Course{},
		&domain.Lesson{},
		&domain.Purchase{},
		&domain.LessonProgress{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, title string, price float64) *domain.Course {
	t.Helper()
	c := &domain.Course{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    "about " + title,
		Price:          price,
		InstructorName: "Sarah Mitchell",
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return c
}

func seedLesson(t *testing.T, db *gorm.DB, courseID, title string, order int) *domain.Lesson {
	t.Helper()
	l := &domain.Lesson{
		ID:       uuid.NewString(),
		CourseID: courseID,
		Title:    title,
		Content:  "body of " + title,
		Order:    order,
	}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return l
}

func seedPurchase(t *testing.T, db *gorm.DB, userID, courseID string) *domain.Purchase {
	t.Helper()
	p := &domain.Purchase{ID: uuid.NewString(), UserID: userID, CourseID: courseID}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
	return p
}
