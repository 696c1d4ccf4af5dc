package ports

import "github.com/bnema/tgsession/internal/domain"

// Surface is the write-only element surface of the page.
type Surface interface {
	SetText(id domain.ElementID, text string)
	SetColor(id domain.ElementID, color string)
	SetVisible(id domain.ElementID, visible bool)
}

// Lifecycle delivers page-wide notifications. Handlers are registered once
// and stay registered for the lifetime of the page.
type Lifecycle interface {
	OnInteraction(kinds []domain.InteractionKind, handler func(domain.InteractionKind))
	OnUnload(handler func())
}
