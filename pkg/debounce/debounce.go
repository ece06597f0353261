// Package debounce coalesces bursts of requests into a single call issued
// after a quiet period.
package debounce

import (
	"context"
	"sync"
	"time"
)

type Func[Q, R any] func(ctx context.Context, query Q) (R, error)

type Result[Q, R any] struct {
	Seq   uint64
	Query Q
	Value R
	Err   error
}

// Runner calls fn with the latest pushed query once no new query has arrived
// for delay. Dispatching a query cancels the context of the call still in
// flight, and a result is only delivered if no newer query was dispatched
// while it ran.
type Runner[Q, R any] struct {
	delay    time.Duration
	fn       Func[Q, R]
	onResult func(Result[Q, R])

	mu         sync.Mutex
	timer      *time.Timer
	pushed     uint64
	dispatched uint64
	cancel     context.CancelFunc
	stopped    bool
	inflight   sync.WaitGroup
}

func New[Q, R any](delay time.Duration, fn Func[Q, R], onResult func(Result[Q, R])) *Runner[Q, R] {
	return &Runner[Q, R]{
		delay:    delay,
		fn:       fn,
		onResult: onResult,
	}
}

// Push schedules query and returns its sequence number. Pushing after Stop is
// a no-op that returns 0.
func (r *Runner[Q, R]) Push(ctx context.Context, query Q) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return 0
	}

	r.pushed++
	seq := r.pushed
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, func() {
		r.dispatch(ctx, seq, query)
	})
	return seq
}

func (r *Runner[Q, R]) dispatch(ctx context.Context, seq uint64, query Q) {
	r.mu.Lock()
	if r.stopped || seq != r.pushed {
		r.mu.Unlock()
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.dispatched = seq
	r.inflight.Add(1)
	r.mu.Unlock()

	defer r.inflight.Done()
	defer cancel()

	value, err := r.fn(runCtx, query)

	r.mu.Lock()
	stale := r.stopped || seq != r.dispatched
	r.mu.Unlock()
	if stale {
		return
	}

	r.onResult(Result[Q, R]{Seq: seq, Query: query, Value: value, Err: err})
}

// Stop drops pending queries, cancels the call in flight and waits for it to
// return. No result is delivered after Stop returns.
func (r *Runner[Q, R]) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()

	r.inflight.Wait()
}
