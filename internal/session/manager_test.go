package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ormund/safescreen/internal/model"
)

// fakeClock advances only when told to, one tick per second.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCountdownCompletesAfterExactTicks(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	if _, err := m.Start(model.DatingSites, 15); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 15; i++ {
		clock.Advance(time.Second)
		remaining, state := m.Tick()
		if i < 15 {
			if state != StateActive {
				t.Fatalf("tick %d: state = %s, want active", i, state)
			}
			if remaining != 15-i {
				t.Fatalf("tick %d: remaining = %d, want %d", i, remaining, 15-i)
			}
		}
	}

	s, state, live := m.Snapshot()
	if !live || state != StateCompletable {
		t.Fatalf("state = %s, want completable", state)
	}
	if !s.CanContinue {
		t.Error("CanContinue must be true at remaining 0")
	}
	if s.RemainingSeconds != 0 {
		t.Errorf("remaining = %d, want 0", s.RemainingSeconds)
	}
}

func TestContinueRejectedWhileActive(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	if _, err := m.Start(model.DatingSites, 15); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)
	m.Tick()

	out, err := m.Handle(Request{Action: ActionContinue})
	if err != nil {
		t.Fatalf("Continue while Active is a no-op, not an error: %v", err)
	}
	if out.Accepted || out.Continued {
		t.Error("Continue before completion must not be accepted")
	}
	if out.RemainingSeconds != 14 {
		t.Errorf("no-op must report remaining = 14, got %d", out.RemainingSeconds)
	}
	if m.State() != StateActive {
		t.Errorf("state = %s, want still active", m.State())
	}
}

func TestContinueAcceptedWhenCompletable(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.DatingSites, 2)
	for i := 0; i < 2; i++ {
		clock.Advance(time.Second)
		m.Tick()
	}

	out, err := m.Handle(Request{Action: ActionContinue})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Accepted || !out.Continued {
		t.Errorf("expected accepted continue, got %+v", out)
	}
	if out.State != StateClosed {
		t.Errorf("state = %s, want closed", out.State)
	}
	if m.State() != StateIdle {
		t.Error("manager must return to idle after continue")
	}
}

func TestStartWhileActiveConflicts(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.Gambling, 10)
	clock.Advance(time.Second)
	m.Tick()

	if _, err := m.Start(model.DatingSites, 5); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("err = %v, want ErrAlreadyActive", err)
	}

	// The original countdown is unaffected.
	s, _, live := m.Snapshot()
	if !live || s.Category != model.Gambling {
		t.Error("original session must survive a conflicting Start")
	}
	if s.RemainingSeconds != 9 {
		t.Errorf("remaining = %d, want 9", s.RemainingSeconds)
	}
}

func TestHighSeverityNeverContinues(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.ExplicitContent, 3) // severity 5
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		m.Tick()
	}

	if m.State() != StateCompletable {
		t.Fatalf("state = %s, want completable", m.State())
	}

	if _, err := m.Handle(Request{Action: ActionContinue}); !errors.Is(err, ErrContinueUnavailable) {
		t.Fatalf("err = %v, want ErrContinueUnavailable", err)
	}
	if out, _ := m.Handle(Request{Action: ActionDismiss}); out.Continued {
		t.Error("Dismiss must not bypass the severity gate")
	}

	// Only Close ends it.
	out, err := m.Handle(Request{Action: ActionClose})
	if err != nil || !out.Closed {
		t.Errorf("Close must always end the session: %+v, %v", out, err)
	}
}

func TestSeverity4AlsoGated(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.Violence, 1) // severity 4
	clock.Advance(time.Second)
	m.Tick()

	if _, err := m.Handle(Request{Action: ActionContinue}); !errors.Is(err, ErrContinueUnavailable) {
		t.Errorf("severity 4 continue err = %v, want ErrContinueUnavailable", err)
	}
}

func TestCloseAlwaysWins(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.DatingSites, 30)
	out, err := m.Handle(Request{Action: ActionClose})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Closed || out.State != StateClosed {
		t.Errorf("expected closed outcome, got %+v", out)
	}

	// A new session may start immediately.
	if _, err := m.Start(model.Gambling, 5); err != nil {
		t.Errorf("Start after Close: %v", err)
	}
}

func TestTickIdempotentWithinSecond(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.DatingSites, 10)
	clock.Advance(time.Second)

	// Many ticks inside the same wall-clock second decrement once.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Tick()
		}()
	}
	wg.Wait()

	s, _, _ := m.Snapshot()
	if s.RemainingSeconds != 9 {
		t.Errorf("remaining = %d, want 9 after duplicate ticks", s.RemainingSeconds)
	}
}

func TestRemainingMonotonic(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.DatingSites, 5)
	prev := 5
	for i := 0; i < 8; i++ {
		clock.Advance(time.Second)
		remaining, _ := m.Tick()
		if remaining > prev {
			t.Fatalf("remaining increased %d → %d", prev, remaining)
		}
		prev = remaining
	}
	if prev != 0 {
		t.Errorf("remaining = %d, want 0", prev)
	}
}

func TestDismissIgnoredWhileActive(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.DatingSites, 10)
	out, err := m.Handle(Request{Action: ActionDismiss})
	if err != nil {
		t.Fatal(err)
	}
	if out.Accepted {
		t.Error("Dismiss while Active must be ignored")
	}
	if m.State() != StateActive {
		t.Error("session must survive an ignored Dismiss")
	}
}

func TestChangeLanguageKeepsTiming(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.DatingSites, 10)
	clock.Advance(time.Second)
	m.Tick()

	out, err := m.Handle(Request{Action: ActionChangeLanguage, Language: "de"})
	if err != nil || !out.Accepted {
		t.Fatalf("ChangeLanguage: %+v, %v", out, err)
	}

	s, state, _ := m.Snapshot()
	if s.Language != "de" {
		t.Errorf("language = %q, want de", s.Language)
	}
	if state != StateActive || s.RemainingSeconds != 9 {
		t.Errorf("timing disturbed: state=%s remaining=%d", state, s.RemainingSeconds)
	}
}

func TestRestartResetsCountdown(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(clock.Now)

	m.Start(model.Gambling, 10)
	for i := 0; i < 4; i++ {
		clock.Advance(time.Second)
		m.Tick()
	}

	s, err := m.Restart(20)
	if err != nil {
		t.Fatal(err)
	}
	if s.RemainingSeconds != 20 || s.TotalSeconds != 20 {
		t.Errorf("remaining = %d total = %d, want 20/20", s.RemainingSeconds, s.TotalSeconds)
	}
	if s.Category != model.Gambling {
		t.Error("Restart must keep the category")
	}

	// Restart outside Active is rejected.
	for i := 0; i < 20; i++ {
		clock.Advance(time.Second)
		m.Tick()
	}
	if _, err := m.Restart(5); !errors.Is(err, ErrNotActive) {
		t.Errorf("Restart in completable: err = %v, want ErrNotActive", err)
	}
}

func TestStartRejectsNonPositive(t *testing.T) {
	m := NewManager(nil)
	if _, err := m.Start(model.Gambling, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("err = %v, want ErrInvalidDuration", err)
	}
}

func TestTickOutsideActiveIsNoop(t *testing.T) {
	m := NewManager(nil)
	if remaining, state := m.Tick(); remaining != 0 || state != StateIdle {
		t.Errorf("idle tick: remaining=%d state=%s", remaining, state)
	}
}

func TestTickerStopsWithContext(t *testing.T) {
	m := NewManager(nil)
	m.Start(model.Gambling, 600)

	ctx, cancel := context.WithCancel(context.Background())
	tk := NewTicker(m)
	tk.interval = time.Millisecond
	tk.Run(ctx)

	cancel()
	tk.Stop() // must not hang

	if _, state, _ := m.Snapshot(); state != StateActive {
		t.Errorf("state = %s, cancellation must not close the session itself", state)
	}
}

func TestTickerExitsWhenSessionCloses(t *testing.T) {
	m := NewManager(nil)
	m.Start(model.Gambling, 600)

	tk := NewTicker(m)
	tk.interval = time.Millisecond
	tk.Run(context.Background())

	m.Handle(Request{Action: ActionClose})

	select {
	case <-tk.done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not exit after session close")
	}
}
