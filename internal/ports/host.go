package ports

import "github.com/bnema/tgsession/internal/domain"

// InitDataUnsafe is the host's decoded, unverified view of the init data.
type InitDataUnsafe struct {
	QueryID    string
	User       *domain.HostUser
	AuthDate   int64
	Hash       string
	StartParam string
}

// Host is the mini-app bridge supplied by the embedding messenger.
type Host interface {
	Ready()
	Expand()
	// InitData returns the raw signed payload, forwarded to the backend verbatim.
	InitData() string
	InitDataUnsafe() InitDataUnsafe
}

// EventSource is implemented by hosts that publish named events such as
// "viewportChanged".
type EventSource interface {
	OnEvent(name string, handler func())
}

type BackButton interface {
	OnClick(handler func())
}

// BackButtonProvider is implemented by hosts with a native back button.
type BackButtonProvider interface {
	BackButton() BackButton
}
