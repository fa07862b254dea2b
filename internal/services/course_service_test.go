package services

import (
	"context"
	"errors"
	"testing"
)

func TestCourseService_ListPage_EmptyCatalog(t *testing.T) {
	svc := &CourseService{DB: newServiceDB(t)}
	rows, total, err := svc.ListPage(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("expected empty catalog, got total=%d len=%d", total, len(rows))
	}
}

func TestCourseService_ListPage_Paging(t *testing.T) {
	db := newServiceDB(t)
	for i := 0; i < 5; i++ {
		seedCourse(t, db, "Course", 10)
	}
	svc := &CourseService{DB: db}
	ctx := context.Background()

	rows, total, err := svc.ListPage(ctx, 1, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if total != 5 || len(rows) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(rows))
	}

	rows, _, err = svc.ListPage(ctx, 3, 2)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("page 3 len = %d, want 1", len(rows))
	}

	// Invalid input falls back to defaults instead of erroring.
	rows, _, err = svc.ListPage(ctx, 0, -7)
	if err != nil {
		t.Fatalf("defaulted: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("defaulted len = %d, want 5", len(rows))
	}
}

func TestCourseService_Get(t *testing.T) {
	db := newServiceDB(t)
	course := seedCourse(t, db, "Intro to Go", 49.99)
	seedLesson(t, db, course.ID, "Structs", 2)
	seedLesson(t, db, course.ID, "Basics", 1)
	svc := &CourseService{DB: db}
	ctx := context.Background()

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}

	detail, err := svc.Get(ctx, course.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Title != "Intro to Go" || detail.Price != 49.99 {
		t.Fatalf("unexpected summary: %+v", detail.CourseSummary)
	}
	if detail.LessonCount != 2 || len(detail.Lessons) != 2 {
		t.Fatalf("unexpected outline size: %+v", detail)
	}
	// Outline is ordered by position, not insertion.
	if detail.Lessons[0].Title != "Basics" || detail.Lessons[1].Title != "Structs" {
		t.Fatalf("outline out of order: %+v", detail.Lessons)
	}
	// Lesson bodies never appear in the public detail shape.
	for _, l := range detail.Lessons {
		if l.ID == "" || l.Title == "" {
			t.Fatalf("incomplete outline entry: %+v", l)
		}
	}
}
