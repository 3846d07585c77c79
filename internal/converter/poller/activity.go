package poller

import (
	"sync"
	"time"

	"github.com/langowen/satsconv/internal/clock"
)

// ActivityTracker remembers the last user interaction.
type ActivityTracker struct {
	clock  clock.Clock
	window time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewActivityTracker(clk clock.Clock, window time.Duration) *ActivityTracker {
	if clk == nil {
		clk = clock.Real()
	}
	return &ActivityTracker{
		clock:  clk,
		window: window,
		last:   clk.Now(),
	}
}

func (a *ActivityTracker) Touch() {
	a.mu.Lock()
	a.last = a.clock.Now()
	a.mu.Unlock()
}

// Active reports whether there was activity within the window.
func (a *ActivityTracker) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clock.Now().Sub(a.last) < a.window
}
