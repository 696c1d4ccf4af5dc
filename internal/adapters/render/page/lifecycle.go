package page

import (
	"sync"

	"github.com/bnema/tgsession/internal/domain"
	"github.com/bnema/tgsession/internal/ports"
)

type interactionListener struct {
	kinds   map[domain.InteractionKind]struct{}
	handler func(domain.InteractionKind)
}

// Lifecycle dispatches page interactions and the unload event. Unload
// fires at most once.
type Lifecycle struct {
	mu           sync.Mutex
	interactions []interactionListener
	unload       []func()
	unloaded     bool
}

var _ ports.Lifecycle = (*Lifecycle)(nil)

func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

func (l *Lifecycle) OnInteraction(kinds []domain.InteractionKind, handler func(domain.InteractionKind)) {
	if handler == nil || len(kinds) == 0 {
		return
	}

	set := make(map[domain.InteractionKind]struct{}, len(kinds))
	for _, kind := range kinds {
		set[kind] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.interactions = append(l.interactions, interactionListener{kinds: set, handler: handler})
}

func (l *Lifecycle) OnUnload(handler func()) {
	if handler == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unload = append(l.unload, handler)
}

func (l *Lifecycle) FireInteraction(kind domain.InteractionKind) {
	l.mu.Lock()
	if l.unloaded {
		l.mu.Unlock()
		return
	}
	var handlers []func(domain.InteractionKind)
	for _, listener := range l.interactions {
		if _, ok := listener.kinds[kind]; ok {
			handlers = append(handlers, listener.handler)
		}
	}
	l.mu.Unlock()

	for _, handler := range handlers {
		handler(kind)
	}
}

func (l *Lifecycle) FireUnload() {
	l.mu.Lock()
	if l.unloaded {
		l.mu.Unlock()
		return
	}
	l.unloaded = true
	handlers := append([]func(){}, l.unload...)
	l.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

func (l *Lifecycle) Unloaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unloaded
}
