package page

import (
	"sync"

	"github.com/bnema/tgsession/internal/domain"
	"github.com/bnema/tgsession/internal/ports"
)

const initialStatusText = "Loading..."

type Element struct {
	Text    string
	Color   string
	Visible bool
}

// Snapshot is a point-in-time copy of the page elements.
type Snapshot struct {
	Status  Element
	Loading Element
	Content Element
}

// Surface holds the page element state the session client renders into.
// The initial state matches a freshly loaded page: status text and
// indicator visible, content hidden.
type Surface struct {
	mu       sync.Mutex
	elements map[domain.ElementID]Element
	onChange func()
}

var _ ports.Surface = (*Surface)(nil)

func NewSurface() *Surface {
	return &Surface{
		elements: map[domain.ElementID]Element{
			domain.ElementStatusText:       {Text: initialStatusText, Visible: true},
			domain.ElementLoadingIndicator: {Visible: true},
			domain.ElementContent:          {},
		},
	}
}

// OnChange registers a callback run after every mutation, outside the lock.
func (s *Surface) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Surface) SetText(id domain.ElementID, text string) {
	s.update(id, func(e *Element) { e.Text = text })
}

func (s *Surface) SetColor(id domain.ElementID, color string) {
	s.update(id, func(e *Element) { e.Color = color })
}

func (s *Surface) SetVisible(id domain.ElementID, visible bool) {
	s.update(id, func(e *Element) { e.Visible = visible })
}

func (s *Surface) Element(id domain.ElementID) Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elements[id]
}

func (s *Surface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Status:  s.elements[domain.ElementStatusText],
		Loading: s.elements[domain.ElementLoadingIndicator],
		Content: s.elements[domain.ElementContent],
	}
}

func (s *Surface) update(id domain.ElementID, apply func(*Element)) {
	s.mu.Lock()
	element := s.elements[id]
	apply(&element)
	s.elements[id] = element
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}
