package query

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/lineage/internal/config"
	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
	"github.com/gyaneshwarpardhi/lineage/internal/metrics"
)

// Engine answers queries against the active forest.
// Trees in a forest are read-only, so workers share them without locking;
// a reload swaps in a whole new forest.
type Engine struct {
	forest   atomic.Pointer[lineage.Forest]
	registry *Registry
	pool     *workerPool[*queryWork]
	conf     config.EngineConf
}

const unknownOpLabel = "unknown"

type queryWork struct {
	ctx     context.Context
	req     *Request
	resultC chan *Result
}

// NewEngine creates an Engine using conf and starts its worker pool.
// The pool stops when ctx is cancelled or Shutdown is called.
func NewEngine(ctx context.Context, f *lineage.Forest, reg *Registry, conf config.EngineConf) *Engine {
	e := &Engine{registry: reg, conf: conf}
	e.SwapForest(f)
	e.pool = newWorkerPool[*queryWork](
		ctx,
		conf.QueryWorkers,
		conf.QueueDepth,
		func(_ context.Context, w *queryWork) {
			w.resultC <- e.Execute(w.ctx, w.req)
		},
	)
	return e
}

// SwapForest atomically replaces the active forest (used on reload).
func (e *Engine) SwapForest(f *lineage.Forest) {
	e.forest.Store(f)
	metrics.LineagesLoaded.Set(float64(f.Len()))
	metrics.VampiresLoaded.Set(float64(f.NodeCount()))
}

// Forest returns the active forest.
func (e *Engine) Forest() *lineage.Forest {
	return e.forest.Load()
}

// Registry returns the op registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Execute runs req on the calling goroutine. Query failures are reported in
// the Result, never as a panic.
func (e *Engine) Execute(ctx context.Context, req *Request) *Result {
	start := time.Now()
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	res := &Result{RequestID: req.ID, Lineage: req.Lineage, Op: req.Op}
	// Only registered ops become label values; callers choose req.Op freely.
	opLabel := unknownOpLabel
	defer func() {
		res.DurationUs = time.Since(start).Microseconds()
		status := "success"
		if res.err != nil {
			status = "error"
		}
		metrics.QueriesExecuted.WithLabelValues(opLabel, status).Inc()
		metrics.QueryDuration.WithLabelValues(opLabel).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}()

	exec, err := e.registry.Get(req.Op)
	if err != nil {
		return res.fail(err)
	}
	opLabel = exec.Op()
	root, ok := e.forest.Load().Root(req.Lineage)
	if !ok {
		return res.fail(fmt.Errorf("%w %q", ErrUnknownLineage, req.Lineage))
	}
	val, err := exec.Execute(ctx, root, req.Args)
	if err != nil {
		return res.fail(err)
	}
	res.Value = val
	return res
}

// Process queues req and waits for its result.
// The error is non-nil only when the query could not run: full queue,
// timeout, or ctx cancellation.
func (e *Engine) Process(ctx context.Context, req *Request) (*Result, error) {
	resultC := make(chan *Result, 1)
	if !e.submit(ctx, req, resultC) {
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.conf.QueueDepth)
	}

	timeout := time.Duration(e.conf.QueryTimeoutMs) * time.Millisecond
	select {
	case res := <-resultC:
		return res, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessBatch queues every request and returns results in request order.
// Requests the queue rejects or that time out get a failed Result.
func (e *Engine) ProcessBatch(ctx context.Context, reqs []*Request) []*Result {
	pending := make([]chan *Result, len(reqs))
	for i, req := range reqs {
		resultC := make(chan *Result, 1)
		if e.submit(ctx, req, resultC) {
			pending[i] = resultC
		}
	}

	deadline := time.NewTimer(time.Duration(e.conf.QueryTimeoutMs) * time.Millisecond)
	defer deadline.Stop()

	out := make([]*Result, len(reqs))
	expired := false
	for i, req := range reqs {
		if pending[i] == nil {
			out[i] = failed(req, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.conf.QueueDepth))
			continue
		}
		if expired {
			select {
			case res := <-pending[i]:
				out[i] = res
			default:
				out[i] = failed(req, ErrTimeout)
			}
			continue
		}
		select {
		case res := <-pending[i]:
			out[i] = res
		case <-deadline.C:
			expired = true
			out[i] = failed(req, ErrTimeout)
		case <-ctx.Done():
			out[i] = failed(req, ctx.Err())
		}
	}
	return out
}

func (e *Engine) submit(ctx context.Context, req *Request, resultC chan *Result) bool {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if !e.pool.Submit(&queryWork{ctx: ctx, req: req, resultC: resultC}) {
		metrics.QueriesRejected.Inc()
		return false
	}
	metrics.QueriesEnqueued.Inc()
	return true
}

func failed(req *Request, err error) *Result {
	res := &Result{RequestID: req.ID, Lineage: req.Lineage, Op: req.Op}
	return res.fail(err)
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// Shutdown drains the worker pool.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
