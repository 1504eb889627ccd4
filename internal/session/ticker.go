package session

import (
	"context"
	"time"
)

// Ticker drives a Manager at 1 Hz. It is the session's single writer:
// nothing else calls Tick while a Ticker runs. The loop exits when the
// session leaves Active (completed or closed underneath it) or when the
// context is cancelled, so no timer outlives its session.
type Ticker struct {
	m        *Manager
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewTicker creates a stopped Ticker for the manager.
func NewTicker(m *Manager) *Ticker {
	return &Ticker{m: m, interval: time.Second}
}

// Run starts ticking until the session completes, closes, or ctx ends.
// It returns immediately; Stop (or ctx cancellation) tears it down.
func (t *Ticker) Run(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, state := t.m.Tick(); state != StateActive {
					return
				}
			}
		}
	}()
}

// Stop cancels the tick loop and waits for it to exit. Safe to call
// when the loop already finished, and safe to call twice.
func (t *Ticker) Stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
}
