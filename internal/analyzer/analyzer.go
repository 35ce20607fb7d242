// Package analyzer runs the two-speed lint pipeline for one editing
// session: the cheap rules synchronously on every text change, the full
// rule set in a background worker behind a debounce. Only the response
// matching the most recent request is ever applied; everything else is
// dropped, which stands in for true cancellation.
package analyzer

import (
	"sync"
	"time"

	"github.com/dexls/dexls/internal/debug"
	"github.com/dexls/dexls/lint"
)

// DefaultDebounce is the delay between the last qualifying edit and the
// background lint request.
const DefaultDebounce = 150 * time.Millisecond

// Analyzer is one editing session. Create with New, feed text changes
// through SetText, and Close when the session ends.
type Analyzer struct {
	fields    func() map[string][]string
	debounce  time.Duration
	onUpdate  func()
	syncRules []lint.Rule
	allRules  []lint.Rule

	// startWorker is swappable so degradation on worker failure is
	// testable.
	startWorker func(func() map[string][]string, []lint.Rule) *worker

	mu           sync.Mutex
	sql          string
	currentID    string
	syncDiags    []lint.Diagnostic
	asyncDiags   []lint.Diagnostic
	asyncLinting bool
	lastDuration time.Duration
	hasDuration  bool
	timer        *time.Timer
	worker       *worker
	workerBroken bool
	pumpDone     chan struct{}
	closed       bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDebounce overrides the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(a *Analyzer) { a.debounce = d }
}

// WithTableFields supplies table metadata to the rules that consume it.
func WithTableFields(fields func() map[string][]string) Option {
	return func(a *Analyzer) { a.fields = fields }
}

// WithOnUpdate registers a callback invoked after a background result is
// accepted, outside the session lock.
func WithOnUpdate(fn func()) Option {
	return func(a *Analyzer) { a.onUpdate = fn }
}

// WithDisabledRules removes the named rule ids from both passes.
func WithDisabledRules(ids []string) Option {
	return func(a *Analyzer) {
		a.syncRules = lint.Without(lint.SyncRules(), ids)
		a.allRules = lint.Without(lint.AllRules(), ids)
	}
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		debounce:    DefaultDebounce,
		startWorker: startWorker,
		syncRules:   lint.SyncRules(),
		allRules:    lint.AllRules(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetText is called on every text change. The sync rules run before it
// returns; the full pass is scheduled behind the debounce timer, with a
// fresh timer replacing any pending one.
func (a *Analyzer) SetText(sql string) {
	ctx := lint.NewContext(sql)
	if a.fields != nil {
		ctx.TableFields = a.fields()
	}
	diags := lint.Run(ctx, a.syncRules)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.sql = sql
	a.syncDiags = diags
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.fireLint)
}

// fireLint runs on the debounce timer goroutine.
func (a *Analyzer) fireLint() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if !a.ensureWorkerLocked() {
		// degraded: sync-only, silently
		return
	}
	id := NewRequestID()
	a.currentID = id
	a.asyncLinting = true
	a.worker.post(Request{Type: TypeLint, RequestID: id, SQL: a.sql})
}

// ensureWorkerLocked lazily creates the background worker. A failure is
// remembered so the session does not retry on every keystroke.
func (a *Analyzer) ensureWorkerLocked() bool {
	if a.worker != nil {
		return true
	}
	if a.workerBroken {
		return false
	}
	w := func() (w *worker) {
		defer func() {
			if rec := recover(); rec != nil {
				debug.DPrintf("analyzer: worker start failed: %v\n", rec)
				w = nil
			}
		}()
		return a.startWorker(a.fields, a.allRules)
	}()
	if w == nil {
		a.workerBroken = true
		return false
	}
	a.worker = w
	a.pumpDone = make(chan struct{})
	go a.pump(w)
	w.post(Request{Type: TypeInit})
	return true
}

// pump applies worker responses, dropping everything whose requestId is
// not the current one.
func (a *Analyzer) pump(w *worker) {
	defer close(a.pumpDone)
	for resp := range w.responses {
		a.apply(resp)
	}
}

func (a *Analyzer) apply(resp Response) {
	a.mu.Lock()
	applied := false
	switch resp.Type {
	case TypeReady:
		// worker is up; nothing to record
	case TypeLintResult:
		if resp.RequestID == a.currentID {
			a.asyncDiags = resp.Diagnostics
			a.lastDuration = time.Duration(resp.Duration) * time.Millisecond
			a.hasDuration = true
			a.asyncLinting = false
			applied = true
		}
	case TypeError:
		if resp.RequestID == "" || resp.RequestID == a.currentID {
			// only stop the in-progress indicator; never surface the error
			debug.DPrintf("analyzer: background pass failed: %s\n", resp.Message)
			a.asyncLinting = false
		}
	}
	cb := a.onUpdate
	a.mu.Unlock()
	if applied && cb != nil {
		cb()
	}
}

// Diagnostics returns the merged view of both diagnostic sets.
func (a *Analyzer) Diagnostics() []lint.Diagnostic {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Merge(a.syncDiags, a.asyncDiags)
}

// SyncDiagnostics returns the last synchronous pass output.
func (a *Analyzer) SyncDiagnostics() []lint.Diagnostic {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]lint.Diagnostic(nil), a.syncDiags...)
}

// AsyncDiagnostics returns the last accepted background pass output.
func (a *Analyzer) AsyncDiagnostics() []lint.Diagnostic {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]lint.Diagnostic(nil), a.asyncDiags...)
}

// IsAsyncLinting reports whether a background pass is in flight.
func (a *Analyzer) IsAsyncLinting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.asyncLinting
}

// LastLintDuration returns the duration of the last accepted background
// pass; ok is false before the first one lands.
func (a *Analyzer) LastLintDuration() (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastDuration, a.hasDuration
}

// Close tears the session down: the pending timer is cancelled and the
// worker goroutine is joined. Safe to call more than once.
func (a *Analyzer) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
	w := a.worker
	pumpDone := a.pumpDone
	a.mu.Unlock()

	if w != nil {
		w.stop()
		<-pumpDone
	}
}
