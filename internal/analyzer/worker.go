package analyzer

import (
	"fmt"
	"time"

	"github.com/dexls/dexls/lint"
)

// worker is the background lint context. It owns no shared state; the
// session talks to it exclusively through the two channels.
type worker struct {
	requests  chan Request
	responses chan Response
	done      chan struct{}
}

// startWorker launches the background goroutine. fields supplies table
// metadata for the rules that want it and may be nil; rules is the set
// every lint request runs.
func startWorker(fields func() map[string][]string, rules []lint.Rule) *worker {
	w := &worker{
		requests:  make(chan Request, 16),
		responses: make(chan Response, 16),
		done:      make(chan struct{}),
	}
	go w.loop(fields, rules)
	return w
}

func (w *worker) loop(fields func() map[string][]string, rules []lint.Rule) {
	defer close(w.done)
	defer close(w.responses)
	for req := range w.requests {
		switch req.Type {
		case TypeInit:
			w.responses <- Response{Type: TypeReady}
		case TypeLint:
			w.responses <- lintPass(req, fields, rules)
		default:
			w.responses <- Response{
				Type:      TypeError,
				RequestID: req.RequestID,
				Message:   fmt.Sprintf("unknown request type %q", req.Type),
			}
		}
	}
}

// lintPass runs the full rule set. A panic anywhere inside becomes an
// error response instead of killing the worker.
func lintPass(req Request, fields func() map[string][]string, rules []lint.Rule) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = Response{
				Type:      TypeError,
				RequestID: req.RequestID,
				Message:   fmt.Sprintf("lint pass failed: %v", rec),
			}
		}
	}()
	start := time.Now()
	ctx := lint.NewContext(req.SQL)
	if fields != nil {
		ctx.TableFields = fields()
	}
	diags := lint.Run(ctx, rules)
	return Response{
		Type:        TypeLintResult,
		RequestID:   req.RequestID,
		Diagnostics: diags,
		Duration:    time.Since(start).Milliseconds(),
	}
}

// post hands a request to the worker without ever blocking the caller;
// a full queue drops the request, which a later debounce fire supersedes
// anyway.
func (w *worker) post(req Request) {
	select {
	case w.requests <- req:
	default:
	}
}

// stop closes the request channel and waits for the loop to drain.
func (w *worker) stop() {
	close(w.requests)
	<-w.done
}
