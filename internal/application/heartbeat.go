package application

import (
	"sync"

	"github.com/bnema/tgsession/internal/ports"
)

// heartbeat is the owned handle of the repeating activity ticker.
type heartbeat struct {
	ticker   ports.Ticker
	stop     chan struct{}
	done     chan struct{}
	haltOnce sync.Once
}

func newHeartbeat(ticker ports.Ticker) *heartbeat {
	return &heartbeat{
		ticker: ticker,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (h *heartbeat) halt() {
	h.haltOnce.Do(func() {
		h.ticker.Stop()
		close(h.stop)
	})
}

func (h *heartbeat) stopped() bool {
	select {
	case <-h.stop:
		return true
	default:
		return false
	}
}
