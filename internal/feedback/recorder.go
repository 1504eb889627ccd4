package feedback

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ormund/safescreen/internal/model"
)

// defaultBuffer absorbs bursts of hits without blocking matchers.
const defaultBuffer = 256

type eventKind int

const (
	evHit eventKind = iota
	evInvalidRule
)

type event struct {
	kind     eventKind
	entryID  int64
	pattern  string
	category model.Category
	ruleID   int64
	reason   string
}

// Recorder is the asynchronous front of the Store. RecordHit and
// RecordInvalidRule never block: when the buffer is full the event is
// dropped and counted. Hit increments are commutative, so a dropped or
// deferred write costs accuracy, never correctness.
//
// Recorder satisfies catalog.Hitter and schedule.Reporter.
type Recorder struct {
	store   *Store
	mu      sync.RWMutex
	closed  bool
	events  chan event
	done    chan struct{}
	dropped atomic.Int64
}

// NewRecorder starts a recorder draining into store.
func NewRecorder(store *Store) *Recorder {
	r := &Recorder{
		store:  store,
		events: make(chan event, defaultBuffer),
		done:   make(chan struct{}),
	}
	go r.drain()
	return r
}

// RecordHit queues a block-count increment. Non-blocking.
func (r *Recorder) RecordHit(entryID int64, pattern string, category model.Category) {
	r.send(event{kind: evHit, entryID: entryID, pattern: pattern, category: category})
}

// RecordInvalidRule queues an invalid schedule report. Non-blocking.
func (r *Recorder) RecordInvalidRule(ruleID int64, reason string) {
	r.send(event{kind: evInvalidRule, ruleID: ruleID, reason: reason})
}

// Dropped returns how many events were discarded on a full buffer.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting events, drains the buffer, and returns once
// every queued write has been applied. Events arriving during or after
// Close are counted as dropped; producers never see a closed channel.
// Safe to call twice.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) send(ev event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}
	select {
	case r.events <- ev:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder) drain() {
	defer close(r.done)
	for ev := range r.events {
		var err error
		switch ev.kind {
		case evHit:
			err = r.store.IncrementHit(ev.entryID, ev.pattern, ev.category)
		case evInvalidRule:
			err = r.store.AddInvalidRule(ev.ruleID, ev.reason)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "feedback: %v\n", err)
		}
	}
}
