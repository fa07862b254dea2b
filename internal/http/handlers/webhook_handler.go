// Payment webhook HTTP handler.
//
// This file exposes the provider's server-to-server callback:
//   - POST /webhooks/payment
//
// The raw request body is read before any parsing because the signature is an
// HMAC over the exact bytes on the wire. A 2xx is only returned after the
// resulting entitlement write has committed; a storage failure yields a 5xx so
// the provider redelivers. Events that verify but carry nothing actionable
// (wrong type, missing metadata) are acknowledged so the provider stops
// retrying them.
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/matrix-academy/go-course-backend/internal/payments"
	"github.com/matrix-academy/go-course-backend/internal/services"
)

// WebhookAckResponse acknowledges a webhook delivery.
type WebhookAckResponse struct {
	Received bool `json:"received"`
	// Ignored is set when the delivery verified but carried nothing
	// actionable (unhandled event type or missing metadata).
	Ignored string `json:"ignored,omitempty"`
}

// maxWebhookBody caps how much of a delivery we will buffer for verification.
const maxWebhookBody = 1 << 20 // 1 MiB

// PaymentWebhook godoc
// @ID          paymentWebhook
// @Summary     Payment provider webhook
// @Description Verifies the delivery signature over the raw body, then grants the
// @Description entitlement described by checkout.session.completed events. Redelivery of
// @Description the same session is acknowledged without creating a second grant.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       Payment-Signature  header  string  true  "Delivery signature (t=...,v1=...)"
//
// @Success     200  {object} handlers.WebhookAckResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid signature or payload"
// @Failure     500  {object} handlers.ErrorResponse "Webhook not configured or storage failure"
// @Router      /webhooks/payment [post]
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	if h.webhook.Secret == "" {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "webhook secret not configured")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}

	tolerance := h.webhook.Tolerance
	if tolerance <= 0 {
		tolerance = payments.DefaultTolerance
	}
	ev, err := payments.ConstructEventWithTolerance(payload, c.GetHeader(payments.SignatureHeader), h.webhook.Secret, tolerance)
	if err != nil {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("webhook signature rejected")
		fail(c, http.StatusBadRequest, ErrCodeInvalidSignature, "webhook signature verification failed")
		return
	}

	ack, err := h.webhookSvc.Process(c.Request.Context(), ev)
	if err != nil {
		// Storage failure: a non-2xx makes the provider redeliver.
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "event processing failed")
		return
	}

	resp := WebhookAckResponse{Received: true}
	switch ack {
	case services.AckIgnoredEventType:
		resp.Ignored = "event_type"
	case services.AckIgnoredMetadata:
		resp.Ignored = "metadata"
	}
	ok(c, http.StatusOK, resp)
}
