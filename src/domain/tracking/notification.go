package tracking

import "github.com/bapt252/commitment-tracking/src/domain/shared"

// NotificationKind names the closed set of SDK notifications listeners can
// subscribe to.
type NotificationKind string

const (
	KindConsentRequired NotificationKind = "consentRequired"
	KindSessionRotated  NotificationKind = "newSession"
)

// Notification is a typed SDK-to-host signal. The variants form a closed set
// so listeners can switch exhaustively.
type Notification interface {
	Kind() NotificationKind
}

// ConsentRequired fires when Init is blocked on missing consent categories.
type ConsentRequired struct {
	UserID           shared.UserID
	RequiredConsents []shared.ConsentCategory
}

func (ConsentRequired) Kind() NotificationKind { return KindConsentRequired }

// SessionRotated fires when the inactivity timeout rotates the session token.
type SessionRotated struct {
	SessionID shared.SessionID
}

func (SessionRotated) Kind() NotificationKind { return KindSessionRotated }
