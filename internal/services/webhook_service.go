// Package services – WebhookService
//
// This file implements the payment-event processor: turning verified
// provider events into entitlement grants, exactly once per event. The
// acknowledgment contract matters more than the grant itself — the provider
// redelivers any event that is not acknowledged, so every recognizable
// outcome (grant created, already granted, unhandled type, unusable
// metadata) acknowledges, and only an infrastructure failure withholds the
// ack to trigger redelivery. The ack is produced only after the store write
// has settled; nothing here is fire-and-forget.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/payments"
	"github.com/matrix-academy/go-course-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Ack classifies a successful webhook acknowledgment.
type Ack int

const (
	// AckProcessed means the event resulted in a grant (fresh or replayed).
	AckProcessed Ack = iota
	// AckIgnoredEventType means the event type is not one we act on.
	AckIgnoredEventType
	// AckIgnoredMetadata means the event lacked user/course metadata and was
	// dropped as belonging to an unrelated integration.
	AckIgnoredMetadata
)

// WebhookService consumes verified payment events. Verification (signature
// over the raw body) happens entirely upstream in the payments package; by
// the time Process runs, the event is trusted.
type WebhookService struct {
	// DB is the database handle used for entitlement writes.
	DB *gorm.DB
}

// Process converts a verified event into an entitlement write.
//
// Idempotency: the grant is keyed on the provider session id (unique
// payment_ref) and on (user, course), so replaying the same event any
// number of times converges on one purchase row, and every replay returns
// AckProcessed. A non-nil error is returned ONLY for infrastructure
// failures — the single retryable path, which the handler surfaces as a
// server error so the provider redelivers.
func (s *WebhookService) Process(ctx context.Context, ev payments.Event) (Ack, error) {
	tr := otel.Tracer("services/WebhookService")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(
			attribute.String("event.id", ev.ID),
			attribute.String("event.type", ev.Type),
		),
	)
	defer span.End()

	if ev.Type != payments.EventTypeCheckoutCompleted {
		webhookEventsTotal.WithLabelValues("ignored_event_type").Inc()
		return AckIgnoredEventType, nil
	}

	userID, courseID := ev.UserID(), ev.CourseID()
	if userID == "" || courseID == "" {
		// Malformed or foreign event: ack so the provider stops retrying,
		// but leave a trace for operators.
		log.Warn().
			Str("event_id", ev.ID).
			Str("session_id", ev.SessionID()).
			Msg("payment event without user/course metadata ignored")
		webhookEventsTotal.WithLabelValues("ignored_metadata").Inc()
		return AckIgnoredMetadata, nil
	}

	ref := ev.SessionID()
	_, status, err := repo.GrantPurchase(ctx, s.DB, userID, courseID, &ref)
	if err != nil {
		return 0, err
	}

	if status == repo.GrantCreated {
		grantsTotal.WithLabelValues("webhook", "created").Inc()
		log.Info().
			Str("event_id", ev.ID).
			Str("user_id", userID).
			Str("course_id", courseID).
			Msg("entitlement granted from payment event")
	} else {
		grantsTotal.WithLabelValues("webhook", "already_owned").Inc()
	}
	webhookEventsTotal.WithLabelValues("processed").Inc()
	return AckProcessed, nil
}
