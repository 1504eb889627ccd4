// Package engine wires the matcher, schedule evaluator, aggregator,
// and reflection session manager into one decision pipeline. Requests
// are processed in arrival order by a single worker; every request
// carries a generation token and results computed for a superseded
// generation are dropped, never delivered.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ormund/safescreen/internal/catalog"
	"github.com/ormund/safescreen/internal/model"
	"github.com/ormund/safescreen/internal/policy"
	"github.com/ormund/safescreen/internal/schedule"
	"github.com/ormund/safescreen/internal/session"
)

// defaultQueueSize bounds the request queue. Submit blocks when full
// rather than reordering or shedding: in-order processing is the
// contract.
const defaultQueueSize = 64

// ErrNotRunning rejects Submit before Run or after shutdown.
var ErrNotRunning = errors.New("engine: not running")

// Request is one decision query from the host.
type Request struct {
	Generation int64                 `json:"generation"`
	Identifier string                `json:"identifier,omitempty"` // hostname or app package id
	Signal     model.DetectionSignal `json:"signal"`
}

// Result is a delivered decision, paired with the reflection session
// it started, if any.
type Result struct {
	Request  Request                `json:"request"`
	Decision model.BlockingDecision `json:"decision"`
	Session  *session.Session       `json:"session,omitempty"`
}

// Config assembles an Engine. Catalog is required; everything else has
// a sane zero value.
type Config struct {
	Catalog   *catalog.Store
	Policy    policy.Policy
	Rules     []schedule.Rule
	Feedback  schedule.Reporter // invalid-rule reports; may be nil
	Sink      func(Result)      // receives in-order, current-generation results
	Now       func() time.Time
	QueueSize int
}

// Engine is the content blocking decision engine.
type Engine struct {
	catalog  *catalog.Store
	sched    *schedule.Evaluator
	sessions *session.Manager
	sink     func(Result)
	now      func() time.Time

	pol   atomic.Pointer[policy.Policy]
	rules atomic.Pointer[[]schedule.Rule]

	gen   atomic.Int64
	stale atomic.Int64

	queue     chan Request
	running   atomic.Bool
	started   chan struct{}
	startOnce sync.Once

	mu     sync.Mutex
	ticker *session.Ticker
}

// New creates an Engine from config.
func New(cfg Config) *Engine {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.NewStore(catalog.NewDefault(), nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sink == nil {
		cfg.Sink = func(Result) {}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	e := &Engine{
		catalog:  cfg.Catalog,
		sched:    schedule.NewEvaluator(cfg.Feedback),
		sessions: session.NewManager(cfg.Now),
		sink:     cfg.Sink,
		now:      cfg.Now,
		queue:    make(chan Request, cfg.QueueSize),
		started:  make(chan struct{}),
	}
	p := cfg.Policy
	e.pol.Store(&p)
	r := cfg.Rules
	e.rules.Store(&r)
	return e
}

// Run processes queued requests until ctx ends. It owns the session
// ticker lifecycle; on exit any live ticker is stopped.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	e.startOnce.Do(func() { close(e.started) })
	defer func() {
		e.running.Store(false)
		e.stopTicker()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-e.queue:
			e.process(ctx, req)
		}
	}
}

// Submit enqueues a request. Blocks when the queue is full to preserve
// arrival order.
func (e *Engine) Submit(ctx context.Context, req Request) error {
	if !e.running.Load() {
		return ErrNotRunning
	}
	select {
	case e.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Started is closed once the worker loop is accepting requests.
func (e *Engine) Started() <-chan struct{} {
	return e.started
}

// Generation returns the current page/app generation.
func (e *Engine) Generation() int64 {
	return e.gen.Load()
}

// AdvanceGeneration marks a navigation: decisions in flight for the old
// generation become stale and will be dropped.
func (e *Engine) AdvanceGeneration() int64 {
	return e.gen.Add(1)
}

// StaleDropped reports how many results were discarded for generation
// mismatch.
func (e *Engine) StaleDropped() int64 {
	return e.stale.Load()
}

// process runs the full pipeline for one request.
func (e *Engine) process(ctx context.Context, req Request) {
	if req.Generation != e.gen.Load() {
		e.stale.Add(1)
		return
	}

	res := e.Evaluate(req)

	// The pipeline is synchronous but the navigation may have moved on
	// while we computed; never deliver a decision for a page the user
	// already left.
	if req.Generation != e.gen.Load() {
		e.stale.Add(1)
		return
	}

	if res.Decision.RecommendedAction.RequiresReflection() {
		secs := res.Decision.ReflectionSeconds
		if secs <= 0 {
			secs = policy.MinReflectionSeconds
		}
		s, err := e.sessions.Start(res.Decision.Category, secs)
		switch {
		case err == nil:
			res.Session = &s
			e.startTicker(ctx)
		case errors.Is(err, session.ErrAlreadyActive):
			// The running countdown stands; a new trigger never
			// replaces it.
		default:
			fmt.Fprintf(os.Stderr, "engine: start session: %v\n", err)
		}
	}

	e.sink(res)
}

// Evaluate runs match + schedule + aggregation for one request without
// touching the session or the queue. Safe to call from any goroutine.
func (e *Engine) Evaluate(req Request) Result {
	sig := req.Signal
	pol := *e.pol.Load()
	rules := *e.rules.Load()
	now := e.now()

	if sig.SiteMatch == nil && req.Identifier != "" {
		if m := e.catalog.Match(req.Identifier); m != nil && e.blockInEffect(rules, req.Identifier, now) {
			sig.SiteMatch = m
		}
	}

	decision := policy.Decide(sig, pol)

	// A schedule may block an app or site the catalog knows nothing
	// about (focus rules). That block needs no category to be real,
	// and it outranks anything short of a warning-level decision.
	if !decision.RecommendedAction.RequiresReflection() && req.Identifier != "" &&
		e.scheduleBlocked(rules, req.Identifier, now) {
		decision = model.BlockingDecision{
			ShouldBlur:        true,
			RecommendedAction: model.BlockNavigation,
			Confidence:        1,
			ReflectionSeconds: policy.ClipReflection(pol.MandatoryReflectionSeconds),
			WarningLevel:      2,
		}
	}

	return Result{Request: req, Decision: decision}
}

// blockInEffect gates a catalog match by schedule: a target with live
// rules is blocked only while one is active; a target with none is
// blocked around the clock. Disabled and malformed rules do not count
// as gating — a broken or switched-off schedule must not lift the
// content block itself.
func (e *Engine) blockInEffect(rules []schedule.Rule, identifier string, now time.Time) bool {
	hasRule := false
	for _, target := range ruleTargets(identifier) {
		for i := range rules {
			if rules[i].Target() != target || !rules[i].IsActive {
				continue
			}
			if rules[i].Validate() != nil {
				continue
			}
			hasRule = true
			break
		}
	}
	if !hasRule {
		return true
	}
	return e.scheduleBlocked(rules, identifier, now)
}

// scheduleBlocked checks the identifier against rules under both of
// its addressable forms: the raw value (app package rules) and its
// SHA-256 hash (site rules).
func (e *Engine) scheduleBlocked(rules []schedule.Rule, identifier string, now time.Time) bool {
	for _, target := range ruleTargets(identifier) {
		if e.sched.AnyBlocked(rules, target, now) {
			return true
		}
	}
	return false
}

func ruleTargets(identifier string) []string {
	return []string{identifier, catalog.HashIdentifier(identifier)}
}

// Sessions exposes the reflection manager for the dialog layer.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Handle forwards a dialog action and tears the ticker down when the
// session ends.
func (e *Engine) Handle(req session.Request) (session.Outcome, error) {
	out, err := e.sessions.Handle(req)
	if out.State == session.StateClosed {
		e.stopTicker()
	}
	return out, err
}

// Background handles the app going to the background: the session and
// its timer are destroyed immediately.
func (e *Engine) Background() {
	e.sessions.Handle(session.Request{Action: session.ActionClose})
	e.stopTicker()
}

// SetCatalog swaps the catalog wholesale (hot reload).
func (e *Engine) SetCatalog(c *catalog.Catalog) {
	e.catalog.Swap(c)
}

// SetRules swaps the schedule rule set (hot reload).
func (e *Engine) SetRules(rules []schedule.Rule) {
	e.rules.Store(&rules)
}

// SetPolicy swaps the aggregation policy (hot reload). A live countdown
// keeps its original duration; only Restart changes it.
func (e *Engine) SetPolicy(p policy.Policy) {
	e.pol.Store(&p)
}

func (e *Engine) startTicker(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ticker != nil {
		e.ticker.Stop()
	}
	e.ticker = session.NewTicker(e.sessions)
	e.ticker.Run(ctx)
}

func (e *Engine) stopTicker() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}
