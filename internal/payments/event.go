// Package payments holds the payment-provider boundary: verifying signed
// webhook payloads into trusted events, and creating provider checkout
// sessions. Nothing in this package touches the database — verification
// completes entirely before the store is involved.
//
// The provider signs each delivery with an HMAC-SHA256 scheme over the exact
// raw body bytes: the signature header carries a unix timestamp and one or
// more signatures of "<timestamp>.<body>". Verification therefore requires
// the unparsed body as sent on the wire; any re-serialization breaks it.
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the HTTP header carrying the provider's payload
// signature, e.g. "t=1712345678,v1=5257a8...".
const SignatureHeader = "Payment-Signature"

// EventTypeCheckoutCompleted is the only event type that results in an
// entitlement grant. Every other type is acknowledged without side effects.
const EventTypeCheckoutCompleted = "checkout.session.completed"

// DefaultTolerance bounds how far a signed timestamp may lag behind the
// verification clock before the delivery is rejected as a replay.
const DefaultTolerance = 5 * time.Minute

// Verification errors. Handlers map all of them to a 400-class response; the
// event processor is never invoked when ConstructEvent fails.
var (
	// ErrMissingSignature means the signature header was absent or empty.
	ErrMissingSignature = errors.New("missing signature header")

	// ErrInvalidSignature means no signature in the header matched the
	// expected HMAC of the payload.
	ErrInvalidSignature = errors.New("no valid signature for payload")

	// ErrSignatureExpired means the signed timestamp fell outside the
	// accepted tolerance window.
	ErrSignatureExpired = errors.New("signature timestamp outside tolerance")

	// ErrMalformedHeader means the signature header could not be parsed.
	ErrMalformedHeader = errors.New("malformed signature header")
)

// Event is a verified payment-provider event. Metadata echoes whatever the
// checkout session was created with — it is the only channel through which
// the processor learns which user bought which course.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object CheckoutSession `json:"object"`
	} `json:"data"`
}

// CheckoutSession is the provider's session object embedded in an event.
type CheckoutSession struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// SessionID returns the provider session identifier carried by the event —
// the idempotency key for entitlement grants.
func (e Event) SessionID() string { return e.Data.Object.ID }

// UserID returns the buyer's user id from session metadata ("" when absent).
func (e Event) UserID() string { return e.Data.Object.Metadata["userId"] }

// CourseID returns the bought course id from session metadata ("" when absent).
func (e Event) CourseID() string { return e.Data.Object.Metadata["courseId"] }

// ConstructEvent verifies sigHeader against the raw payload bytes using
// secret and, on success, parses the payload into an Event.
//
// The header format is "t=<unix>,v1=<hex hmac>[,v1=<hex hmac>...]"; unknown
// schemes are ignored, and any matching v1 signature accepts the delivery
// (this allows secret rotation). Comparison is constant-time. The timestamp
// must be within DefaultTolerance of now.
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	return constructEventAt(payload, sigHeader, secret, time.Now(), DefaultTolerance)
}

// ConstructEventWithTolerance is ConstructEvent with an explicit timestamp
// tolerance, for deployments that tune the replay window.
func ConstructEventWithTolerance(payload []byte, sigHeader, secret string, tolerance time.Duration) (Event, error) {
	return constructEventAt(payload, sigHeader, secret, time.Now(), tolerance)
}

func constructEventAt(payload []byte, sigHeader, secret string, now time.Time, tolerance time.Duration) (Event, error) {
	var ev Event

	if strings.TrimSpace(sigHeader) == "" {
		return ev, ErrMissingSignature
	}

	ts, sigs, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return ev, err
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return ev, ErrSignatureExpired
		}
	}

	expected := Sign(payload, secret, ts)
	ok := false
	for _, s := range sigs {
		if hmac.Equal([]byte(s), []byte(expected)) {
			ok = true
			break
		}
	}
	if !ok {
		return ev, ErrInvalidSignature
	}

	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("parse event payload: %w", err)
	}
	return ev, nil
}

// Sign computes the hex HMAC-SHA256 of "<ts>.<payload>" with secret. It is
// exported so tests and local tooling can forge valid deliveries.
func Sign(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureFor builds a complete signature header value for payload, signed
// at ts. Test helper counterpart of ConstructEvent.
func SignatureFor(payload []byte, secret string, ts int64) string {
	return fmt.Sprintf("t=%d,v1=%s", ts, Sign(payload, secret, ts))
}

// parseSignatureHeader splits "t=...,v1=...,v1=..." into the timestamp and
// the list of v1 signatures.
func parseSignatureHeader(h string) (ts int64, sigs []string, err error) {
	tsSeen := false
	for _, part := range strings.Split(h, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return 0, nil, ErrMalformedHeader
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, nil, ErrMalformedHeader
			}
			tsSeen = true
		case "v1":
			if v != "" {
				sigs = append(sigs, v)
			}
		default:
			// Unknown scheme (e.g. v0): skip, per provider contract.
		}
	}
	if !tsSeen || len(sigs) == 0 {
		return 0, nil, ErrMalformedHeader
	}
	return ts, sigs, nil
}
