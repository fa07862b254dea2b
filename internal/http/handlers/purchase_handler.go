// Purchase HTTP handlers.
//
// This file exposes REST endpoints for direct purchases and entitlement reads:
//   - POST /courses/{id}/purchase     (grant an entitlement synchronously)
//   - GET  /courses/{id}/entitlement  (does the caller own this course?)
//   - GET  /me/purchases              (list the caller's purchases, ETag support)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (user, course, key), the handler returns that recorded
// purchase and sets `Idempotency-Replayed: true`. Even without a key, a repeat
// purchase is safe: the unique (user, course) constraint makes the second call
// return the existing grant with granted=false.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matrix-academy/go-course-backend/internal/repo"
	"github.com/matrix-academy/go-course-backend/internal/services"
)

//
// DTOs
//

// EntitlementResponse reports ownership of one course by the caller.
type EntitlementResponse struct {
	CourseID    string     `json:"course_id"`
	Owned       bool       `json:"owned"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
}

// ListPurchasesResponse wraps a page of the caller's purchases.
type ListPurchasesResponse struct {
	Purchases  []services.PurchaseRecord `json:"purchases"`
	Pagination Pagination                `json:"pagination"`
}

//
// Handlers
//

// PurchaseCourse godoc
// @ID          purchaseCourse
// @Summary     Purchase a course
// @Description Grants the caller an entitlement for the course. Buying a course you
// @Description already own is not an error: the existing grant is returned with granted=false.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Purchases
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Course ID"
//
// @Success     201  {object} services.PurchaseResult "Entitlement created"
// @Success     200  {object} services.PurchaseResult "Already owned (granted=false)"
// @Failure     404  {object} handlers.ErrorResponse  "Course not found"
// @Failure     500  {object} handlers.ErrorResponse  "Internal error"
// @Router      /courses/{id}/purchase [post]
func (h *Handlers) PurchaseCourse(c *gin.Context) {
	ctx := c.Request.Context()
	courseID := c.Param("id")
	currentUser := userID(c)

	// Idempotency (replay path) – read validated key if present. The replay
	// serves the recorded status; the body comes from the store, which the
	// unique (user, course) constraint keeps stable across retries.
	idemKey := idempotencyKey(c)
	if idemKey != "" {
		if svc, okSvc := h.purchaseSvc.(*services.PurchaseService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentUser, courseID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if res, err2 := h.purchaseSvc.Purchase(ctx, currentUser, courseID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, rec.Status, res)
					return
				}
			}
		}
	}

	res, err := h.purchaseSvc.Purchase(ctx, currentUser, courseID)
	if err != nil {
		switch err {
		case services.ErrCourseNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "course not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodePurchaseFailed, err.Error())
		}
		return
	}

	status := http.StatusOK
	if res.Granted {
		status = http.StatusCreated
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.purchaseSvc.(*services.PurchaseService); okSvc && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentUser, courseID, idemKey, res.PurchaseID, status, ttl)
		}
	}

	ok(c, status, res)
}

// GetEntitlement godoc
// @ID          getEntitlement
// @Summary     Check course ownership
// @Description Reports whether the caller owns the course and, if so, since when.
// @Tags        Purchases
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Course ID"
//
// @Success     200  {object} handlers.EntitlementResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /courses/{id}/entitlement [get]
func (h *Handlers) GetEntitlement(c *gin.Context) {
	courseID := c.Param("id")
	owned, at, err := h.purchaseSvc.HasPurchased(c.Request.Context(), userID(c), courseID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, EntitlementResponse{CourseID: courseID, Owned: owned, PurchasedAt: at})
}

// ListMyPurchases godoc
// @ID          listMyPurchases
// @Summary     List my purchases (paginated)
// @Description Returns a page of the caller's purchases, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Purchases
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListPurchasesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /me/purchases [get]
func (h *Handlers) ListMyPurchases(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if svc, okSvc := h.purchaseSvc.(*services.PurchaseService); okSvc && svc.DB != nil {
		count, maxTS, err := repo.PurchasesStats(ctx, svc.DB, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"purchases:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.purchaseSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListPurchasesResponse{
		Purchases:  items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// idempotencyKey extracts an idempotency key if an upstream middleware has
// already validated/stashed it. The fallback behavior reads the
// "Idempotency-Key" header directly when no dedicated middleware exists.
func idempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}
