// Checkout-session creation boundary.
//
// The core never processes payments itself: it asks a SessionCreator for a
// redirect target and hands the URL to the client. The metadata placed on
// the session here (userId, courseId) is echoed back verbatim by the
// provider inside the confirmation event — it is the only way the webhook
// processor learns who bought what.
package payments

import (
	"context"
	"fmt"
	"time"
)

// SessionParams carries everything a provider needs to open a checkout
// session for one course.
type SessionParams struct {
	UserID          string
	CourseID        string
	CourseTitle     string
	CourseDesc      string
	UnitAmountCents int64
	SuccessURL      string
	CancelURL       string
}

// Session is the opaque descriptor returned by the provider. The client is
// redirected to URL; ID later reappears as the event's session id.
type Session struct {
	ID  string
	URL string
}

// SessionCreator is the external-collaborator interface for opening
// checkout sessions. Implementations must attach UserID and CourseID as
// session metadata.
type SessionCreator interface {
	CreateSession(ctx context.Context, p SessionParams) (*Session, error)
}

// DevSessionCreator is the development/test implementation used when no
// provider credentials are configured. It fabricates a session that
// redirects straight back to the course page with a success marker, the same
// shape the hosted provider flow would produce.
type DevSessionCreator struct {
	// Now is a clock override for tests; nil means time.Now.
	Now func() time.Time
}

// CreateSession returns a deterministic-looking dev session for p.
func (d *DevSessionCreator) CreateSession(_ context.Context, p SessionParams) (*Session, error) {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return &Session{
		ID:  fmt.Sprintf("cs_dev_%d", now().UnixNano()),
		URL: p.SuccessURL,
	}, nil
}
