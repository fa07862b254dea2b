// Checkout HTTP handlers.
//
// This file exposes the provider checkout entry point:
//   - POST /courses/{id}/checkout-session
//
// The handler opens a provider session carrying the (userId, courseId) pair in
// session metadata; the payment webhook reads it back after the provider
// confirms payment. Buying a course you already own short-circuits here with
// already_owned instead of opening a session.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matrix-academy/go-course-backend/internal/services"
)

// CheckoutSessionResponse is the JSON envelope for a created checkout session.
type CheckoutSessionResponse struct {
	SessionID    string `json:"session_id,omitempty"`
	URL          string `json:"url,omitempty"`
	AlreadyOwned bool   `json:"already_owned,omitempty"`
}

// CreateCheckoutSession godoc
// @ID          createCheckoutSession
// @Summary     Open a checkout session
// @Description Creates a provider checkout session for buying the course and returns its
// @Description redirect URL. Returns already_owned=true (no session) when the caller
// @Description already holds the entitlement.
// @Tags        Checkout
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Course ID"
//
// @Success     200  {object} handlers.CheckoutSessionResponse
// @Failure     400  {object} handlers.ErrorResponse "Course has no purchasable price"
// @Failure     404  {object} handlers.ErrorResponse "Course not found"
// @Failure     502  {object} handlers.ErrorResponse "Payment provider failure"
// @Router      /courses/{id}/checkout-session [post]
func (h *Handlers) CreateCheckoutSession(c *gin.Context) {
	ctx := c.Request.Context()
	courseID := c.Param("id")
	uid := userID(c)

	owned, _, err := h.purchaseSvc.HasPurchased(ctx, uid, courseID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if owned {
		ok(c, http.StatusOK, CheckoutSessionResponse{AlreadyOwned: true})
		return
	}

	sess, err := h.checkoutSvc.CreateSession(ctx, uid, courseID)
	if err != nil {
		switch err {
		case services.ErrCourseNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "course not found")
		case services.ErrInvalidPrice:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "course has no purchasable price")
		default:
			fail(c, http.StatusBadGateway, ErrCodeCheckoutFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, CheckoutSessionResponse{SessionID: sess.SessionID, URL: sess.URL})
}
