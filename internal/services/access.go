// Package services – AccessGate
//
// The gate is the single decision point guarding course content and progress
// operations: it owns no state and simply consults the purchase store.
// Callers resolve existence (404) before asking the gate so that a denial
// never reveals whether the resource exists.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/repo"
)

// AccessGate decides whether a user may touch a course's gated surface
// (lesson bodies, per-lesson progress, aggregate progress). Course metadata
// is never gated.
type AccessGate struct {
	// DB is the database handle used for entitlement lookups.
	DB *gorm.DB
}

// CanAccessCourseContent reports whether userID holds an entitlement for
// courseID. It is a pure read; the error is non-nil only for infrastructure
// failures.
func (g *AccessGate) CanAccessCourseContent(ctx context.Context, userID, courseID string) (bool, error) {
	return repo.HasPurchase(ctx, g.DB, userID, courseID)
}

// require returns ErrCourseNotPurchased unless the gate allows access.
// Shared by the lesson and progress services.
func (g *AccessGate) require(ctx context.Context, userID, courseID string) error {
	ok, err := g.CanAccessCourseContent(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCourseNotPurchased
	}
	return nil
}
