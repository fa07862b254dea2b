package payments

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

const testSecret = "whsec_test_secret"

func completedPayload(sessionID, userID, courseID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":%q,"metadata":{"userId":%q,"courseId":%q}}}}`,
		sessionID, userID, courseID,
	))
}

func TestConstructEvent_ValidSignature(t *testing.T) {
	payload := completedPayload("cs_1", "u1", "c1")
	ts := time.Now().Unix()

	ev, err := ConstructEvent(payload, SignatureFor(payload, testSecret, ts), testSecret)
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}
	if ev.Type != EventTypeCheckoutCompleted {
		t.Fatalf("unexpected type: %q", ev.Type)
	}
	if ev.SessionID() != "cs_1" || ev.UserID() != "u1" || ev.CourseID() != "c1" {
		t.Fatalf("unexpected accessors: %q %q %q", ev.SessionID(), ev.UserID(), ev.CourseID())
	}
}

func TestConstructEvent_MissingHeader(t *testing.T) {
	if _, err := ConstructEvent([]byte(`{}`), "   ", testSecret); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}
}

func TestConstructEvent_MalformedHeader(t *testing.T) {
	cases := []string{
		"garbage",
		"t=notanumber,v1=abc",
		"v1=abc",        // no timestamp
		"t=1712345678",  // no signature
		"t=1,v0=onlyv0", // unknown scheme only
	}
	payload := []byte(`{}`)
	for _, h := range cases {
		if _, err := ConstructEvent(payload, h, testSecret); !errors.Is(err, ErrMalformedHeader) {
			t.Fatalf("header %q: expected ErrMalformedHeader, got %v", h, err)
		}
	}
}

func TestConstructEvent_WrongSecret(t *testing.T) {
	payload := completedPayload("cs_1", "u1", "c1")
	ts := time.Now().Unix()
	sig := SignatureFor(payload, "some-other-secret", ts)

	if _, err := ConstructEvent(payload, sig, testSecret); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestConstructEvent_TamperedPayload(t *testing.T) {
	payload := completedPayload("cs_1", "u1", "c1")
	ts := time.Now().Unix()
	sig := SignatureFor(payload, testSecret, ts)

	tampered := completedPayload("cs_1", "attacker", "c1")
	if _, err := ConstructEvent(tampered, sig, testSecret); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for tampered body, got %v", err)
	}
}

func TestConstructEvent_ExpiredTimestamp(t *testing.T) {
	payload := completedPayload("cs_1", "u1", "c1")
	old := time.Now().Add(-10 * time.Minute).Unix()
	sig := SignatureFor(payload, testSecret, old)

	if _, err := ConstructEvent(payload, sig, testSecret); !errors.Is(err, ErrSignatureExpired) {
		t.Fatalf("expected ErrSignatureExpired, got %v", err)
	}

	// A wider explicit tolerance accepts the same delivery.
	if _, err := ConstructEventWithTolerance(payload, sig, testSecret, time.Hour); err != nil {
		t.Fatalf("wider tolerance should accept: %v", err)
	}
}

func TestConstructEvent_SecretRotation_SecondV1Matches(t *testing.T) {
	payload := completedPayload("cs_1", "u1", "c1")
	ts := time.Now().Unix()

	header := fmt.Sprintf("t=%d,v1=%s,v1=%s",
		ts,
		Sign(payload, "retired-secret", ts),
		Sign(payload, testSecret, ts),
	)
	if _, err := ConstructEvent(payload, header, testSecret); err != nil {
		t.Fatalf("any matching v1 should verify: %v", err)
	}
}

func TestConstructEvent_InvalidJSONAfterValidSignature(t *testing.T) {
	payload := []byte(`{not json`)
	ts := time.Now().Unix()
	sig := SignatureFor(payload, testSecret, ts)

	if _, err := ConstructEvent(payload, sig, testSecret); err == nil {
		t.Fatalf("expected parse error for invalid JSON")
	}
}

func TestEvent_MetadataAccessors_AbsentKeys(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{}}}}`)
	ts := time.Now().Unix()

	ev, err := ConstructEvent(payload, SignatureFor(payload, testSecret, ts), testSecret)
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}
	if ev.UserID() != "" || ev.CourseID() != "" {
		t.Fatalf("expected empty metadata accessors, got %q %q", ev.UserID(), ev.CourseID())
	}
}
