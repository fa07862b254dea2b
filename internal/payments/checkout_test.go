package payments

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestDevSessionCreator_CreateSession(t *testing.T) {
	fixed := time.Unix(1712345678, 42)
	d := &DevSessionCreator{Now: func() time.Time { return fixed }}

	s, err := d.CreateSession(context.Background(), SessionParams{
		UserID:     "u1",
		CourseID:   "c1",
		SuccessURL: "http://localhost:5173/courses/c1?purchase=success",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if want := "cs_dev_1712345678000000042"; s.ID != want {
		t.Fatalf("session id = %q, want %q", s.ID, want)
	}
	if s.URL != "http://localhost:5173/courses/c1?purchase=success" {
		t.Fatalf("unexpected url: %q", s.URL)
	}
}

func TestDevSessionCreator_NilClockUsesWallTime(t *testing.T) {
	d := &DevSessionCreator{}
	s, err := d.CreateSession(context.Background(), SessionParams{SuccessURL: "http://x"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.ID == "cs_dev_" || !strings.HasPrefix(s.ID, "cs_dev_") {
		t.Fatalf("unexpected session id: %q", s.ID)
	}
}
