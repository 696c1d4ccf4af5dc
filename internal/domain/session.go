package domain

import "time"

type State string

const (
	StateUninitialized    State = "uninitialized"
	StateIdentityAcquired State = "identity_acquired"
	StateAuthorized       State = "authorized"
	StateFailed           State = "failed"
	StateLoggedOut        State = "logged_out"
)

func (s State) Terminal() bool {
	return s == StateFailed || s == StateLoggedOut
}

const DefaultHeartbeatInterval = 30 * time.Second

// HostEventViewportChanged is the host event that counts as user activity.
const HostEventViewportChanged = "viewportChanged"

type InteractionKind string

const (
	InteractionPointerPress InteractionKind = "click"
	InteractionTouchStart   InteractionKind = "touchstart"
	InteractionScroll       InteractionKind = "scroll"
	InteractionKeyPress     InteractionKind = "keypress"
)

// ActivityInteractions are the interactions that stamp the last activity time.
var ActivityInteractions = []InteractionKind{
	InteractionPointerPress,
	InteractionTouchStart,
	InteractionScroll,
	InteractionKeyPress,
}

type ElementID string

const (
	ElementStatusText       ElementID = "loadingText"
	ElementLoadingIndicator ElementID = "loadingIndicator"
	ElementContent          ElementID = "videoContainer"
)

const (
	ColorError   = "#f44336"
	ColorSuccess = "#4CAF50"
)

// ActivityTimestamp formats t the way the heartbeat endpoint expects it:
// UTC, millisecond precision, trailing Z.
func ActivityTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
