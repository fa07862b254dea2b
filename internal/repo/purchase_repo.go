// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Purchase
// model — the entitlement store.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a purchase is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - GrantPurchase never surfaces a uniqueness violation as an error: the
//     conflict is resolved to GrantAlreadyOwned plus the existing row. This
//     is the spine of the grant-uniqueness and webhook-idempotency
//     guarantees — concurrent granters race on the DB constraint, exactly
//     one insert wins, and every loser observes the winner's row.
//   - On other DB errors (connectivity, missing table, etc.), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GrantStatus is the typed outcome of a grant attempt.
type GrantStatus int

const (
	// GrantCreated means a new purchase row was inserted by this call.
	GrantCreated GrantStatus = iota
	// GrantAlreadyOwned means a purchase for (user, course) — or for the
	// same payment reference — already existed; the returned row is the
	// pre-existing one.
	GrantAlreadyOwned
)

// GrantPurchase atomically grants an entitlement for (userID, courseID).
//
// paymentRef carries the payment provider's session identifier for
// webhook-driven grants and is nil for direct/manual grants. Uniqueness of
// both (user_id, course_id) and payment_ref is enforced by database
// constraints, not by a check-then-insert, so concurrent callers cannot
// produce duplicate rows.
//
// Outcomes:
//   - (purchase, GrantCreated, nil): the row was inserted by this call.
//   - (existing, GrantAlreadyOwned, nil): a unique constraint fired; the
//     existing row for the pair is loaded and returned.
//   - (nil, 0, err): infrastructure failure; err is the raw DB error.
func GrantPurchase(ctx context.Context, db *gorm.DB, userID, courseID string, paymentRef *string) (*domain.Purchase, GrantStatus, error) {
	p := &domain.Purchase{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		PaymentRef: paymentRef,
		CreatedAt:  time.Now().UTC(),
	}
	err := db.WithContext(ctx).Create(p).Error
	if err == nil {
		return p, GrantCreated, nil
	}
	if !isUniqueViolation(err) {
		return nil, 0, err
	}

	// Someone else holds the row; surface theirs. The lookup by pair also
	// covers the payment_ref conflict, since a ref collision implies the
	// same (user, course) was granted through it.
	existing, lerr := GetPurchase(ctx, db, userID, courseID)
	if lerr != nil {
		if paymentRef != nil {
			// Ref collided but the pair row belongs to another pair lookup
			// (malformed replay with mismatched metadata): fetch by ref.
			if byRef, rerr := getPurchaseByRef(ctx, db, *paymentRef); rerr == nil {
				return byRef, GrantAlreadyOwned, nil
			}
		}
		return nil, 0, lerr
	}
	return existing, GrantAlreadyOwned, nil
}

// HasPurchase reports whether userID holds an entitlement for courseID.
// Pure lookup, no side effects.
func HasPurchase(ctx context.Context, db *gorm.DB, userID, courseID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&n).Error
	return n > 0, err
}

// GetPurchase fetches the purchase for (userID, courseID), or ErrNotFound.
func GetPurchase(ctx context.Context, db *gorm.DB, userID, courseID string) (*domain.Purchase, error) {
	var p domain.Purchase
	err := db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// getPurchaseByRef fetches a purchase by its payment reference.
func getPurchaseByRef(ctx context.Context, db *gorm.DB, ref string) (*domain.Purchase, error) {
	var p domain.Purchase
	err := db.WithContext(ctx).
		Where("payment_ref = ?", ref).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPurchases returns all purchases belonging to userID with their courses
// preloaded, ordered by creation time descending (most recent first). It
// returns an empty slice if the user has no purchases.
func ListPurchases(ctx context.Context, db *gorm.DB, userID string) ([]domain.Purchase, error) {
	var out []domain.Purchase
	err := db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountPurchases returns the total number of purchases owned by userID.
func CountPurchases(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListPurchasesPage returns a paginated slice of purchases for userID with
// courses preloaded, ordered by creation time descending. Use CountPurchases
// to obtain the total for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListPurchasesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Purchase, error) {
	var out []domain.Purchase
	err := db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// isUniqueViolation detects unique-constraint failures across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	// Postgres typically: "duplicate key value violates unique constraint".
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
