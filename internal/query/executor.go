package query

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
)

// Executor is the interface every query op must satisfy.
type Executor interface {
	// Op returns the string key this executor is registered under.
	Op() string
	// Validate checks args before the query is queued.
	Validate(args map[string]interface{}) error
	// Execute runs the query against the lineage rooted at root.
	Execute(ctx context.Context, root *lineage.Vampire, args map[string]interface{}) (interface{}, error)
}

// Registry maps op names to their executors.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register adds an executor. Panics on duplicate op to surface misconfiguration early.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[e.Op()]; exists {
		panic(fmt.Sprintf("query registry: duplicate op %q", e.Op()))
	}
	r.executors[e.Op()] = e
}

// Get returns the executor for op.
func (r *Registry) Get(op string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[op]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownOp, op)
	}
	return e, nil
}

// Ops returns all registered op names, sorted.
func (r *Registry) Ops() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.executors))
	for k := range r.executors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
