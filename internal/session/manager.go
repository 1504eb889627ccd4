// Package session owns the reflection countdown gating a user's
// ability to continue past a content warning. At most one session is
// live system-wide; starting another while one exists is rejected so a
// lower-severity trigger can never overwrite a running countdown.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ormund/safescreen/internal/model"
)

// State is the manager's position in the warning lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateActive      State = "active"
	StateCompletable State = "completable"
	StateClosed      State = "closed"
)

// Action is a user interaction with the warning dialog.
type Action string

const (
	ActionClose          Action = "close"
	ActionContinue       Action = "continue"
	ActionDismiss        Action = "dismiss"
	ActionChangeLanguage Action = "change_language"
)

// bypassSeverity is the severity at and above which Continue is never
// offered, countdown or not.
const bypassSeverity = 4

var (
	// ErrAlreadyActive rejects Start while a session is live.
	ErrAlreadyActive = errors.New("session: a reflection session is already active")
	// ErrNoSession rejects operations that need a live session.
	ErrNoSession = errors.New("session: no active session")
	// ErrNotActive rejects Restart outside the Active state.
	ErrNotActive = errors.New("session: not in active state")
	// ErrContinueUnavailable rejects Continue for high-severity categories.
	ErrContinueUnavailable = errors.New("session: continue is not available for this category")
	// ErrInvalidDuration rejects non-positive countdowns.
	ErrInvalidDuration = errors.New("session: duration must be positive")
)

// Request is one dialog interaction submitted to Handle.
type Request struct {
	Action   Action
	Language string // only read for ActionChangeLanguage
}

// Outcome reports what a Handle call did.
type Outcome struct {
	Accepted         bool  // the action took effect
	Closed           bool  // the session ended with a deny/navigate-away
	Continued        bool  // the session ended with an allowed continue
	RemainingSeconds int   // countdown remaining after the call
	State            State // state after the call (StateClosed is terminal)
}

// Session is a snapshot of the live countdown, safe to hand to the UI.
type Session struct {
	ID               string         `json:"id"`
	Category         model.Category `json:"category"`
	TotalSeconds     int            `json:"total_seconds"`
	RemainingSeconds int            `json:"remaining_seconds"`
	CanContinue      bool           `json:"can_continue"`
	Language         string         `json:"language,omitempty"`
	StartedAt        time.Time      `json:"started_at"`
}

// Manager is the reflection state machine. All methods are safe for
// concurrent use, but ticking is expected to come from a single owner
// (see Ticker); external callers only read state and submit actions.
type Manager struct {
	mu       sync.Mutex
	state    State
	cur      Session
	lastTick int64 // unix second of the last effective tick
	now      func() time.Time
}

// NewManager creates an idle Manager. now may be nil for time.Now.
func NewManager(now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{state: StateIdle, now: now}
}

// Start begins a countdown for a triggering category. Fails with
// ErrAlreadyActive while another session is live; the running session
// is left untouched.
func (m *Manager) Start(category model.Category, seconds int) (Session, error) {
	if seconds <= 0 {
		return Session{}, ErrInvalidDuration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateActive || m.state == StateCompletable {
		return Session{}, ErrAlreadyActive
	}

	now := m.now()
	m.cur = Session{
		ID:               uuid.NewString(),
		Category:         category,
		TotalSeconds:     seconds,
		RemainingSeconds: seconds,
		StartedAt:        now,
	}
	m.state = StateActive
	m.lastTick = now.Unix()
	return m.cur, nil
}

// Tick advances the countdown by one second. Idempotent within a
// wall-clock second: concurrent or duplicate calls inside the same
// second decrement once. The timestamp guard (rather than a counter)
// keeps the countdown honest across host suspend/resume.
func (m *Manager) Tick() (remaining int, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		return m.cur.RemainingSeconds, m.state
	}

	sec := m.now().Unix()
	if sec == m.lastTick {
		return m.cur.RemainingSeconds, m.state
	}
	m.lastTick = sec

	m.cur.RemainingSeconds--
	if m.cur.RemainingSeconds <= 0 {
		m.cur.RemainingSeconds = 0
		m.cur.CanContinue = true
		m.state = StateCompletable
	}
	return m.cur.RemainingSeconds, m.state
}

// Handle applies a dialog action.
//
//   - Close always ends the session, whatever the state.
//   - Continue is honored only in Completable, and never for categories
//     at or above the bypass severity; while Active it is a rejected
//     no-op reporting the remaining time.
//   - Dismiss acts like Continue when Completable, otherwise nothing.
//   - ChangeLanguage updates the display language and no timing.
func (m *Manager) Handle(req Request) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.state == StateActive || m.state == StateCompletable

	switch req.Action {
	case ActionClose:
		m.reset()
		return Outcome{Accepted: true, Closed: true, State: StateClosed}, nil

	case ActionContinue:
		if !live {
			return Outcome{State: m.state}, ErrNoSession
		}
		// Re-checked here even though the UI should never offer the
		// control: stale UI state must not become a bypass.
		if m.cur.Category.Severity() >= bypassSeverity {
			return m.rejected(), ErrContinueUnavailable
		}
		if m.state != StateCompletable {
			return m.rejected(), nil
		}
		m.reset()
		return Outcome{Accepted: true, Continued: true, State: StateClosed}, nil

	case ActionDismiss:
		if m.state == StateCompletable && m.cur.Category.Severity() < bypassSeverity {
			m.reset()
			return Outcome{Accepted: true, Continued: true, State: StateClosed}, nil
		}
		return m.rejected(), nil

	case ActionChangeLanguage:
		if !live {
			return Outcome{State: m.state}, ErrNoSession
		}
		m.cur.Language = req.Language
		out := m.rejected()
		out.Accepted = true
		return out, nil
	}

	return Outcome{State: m.state}, errors.New("session: unknown action")
}

// Restart resets the countdown mid-flight, keeping the category.
// Allowed only while Active (a settings change during the countdown).
func (m *Manager) Restart(newSeconds int) (Session, error) {
	if newSeconds <= 0 {
		return Session{}, ErrInvalidDuration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		return Session{}, ErrNotActive
	}

	m.cur.TotalSeconds = newSeconds
	m.cur.RemainingSeconds = newSeconds
	m.cur.CanContinue = false
	m.lastTick = m.now().Unix()
	return m.cur, nil
}

// Snapshot returns the live session, if any.
func (m *Manager) Snapshot() (Session, State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := m.state == StateActive || m.state == StateCompletable
	return m.cur, m.state, live
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// reset destroys the current session. Callers hold m.mu.
func (m *Manager) reset() {
	m.cur = Session{}
	m.state = StateIdle
	m.lastTick = 0
}

// rejected reports the current countdown without changing anything.
// Callers hold m.mu.
func (m *Manager) rejected() Outcome {
	return Outcome{RemainingSeconds: m.cur.RemainingSeconds, State: m.state}
}
