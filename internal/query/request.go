package query

import (
	"errors"

	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
)

var (
	// ErrUnknownLineage is returned when a request names a lineage that is not loaded.
	ErrUnknownLineage = errors.New("unknown lineage")
	// ErrUnknownOp is returned when no executor is registered for the op.
	ErrUnknownOp = errors.New("unknown op")
	// ErrInvalidArgs is returned when an op's arguments are missing or malformed.
	ErrInvalidArgs = errors.New("invalid args")
	// ErrQueueFull is returned when the engine cannot accept more work.
	ErrQueueFull = errors.New("query queue full")
	// ErrTimeout is returned when a queued query does not finish in time.
	ErrTimeout = errors.New("query timeout")
)

// Request is a single structural query against one lineage.
type Request struct {
	ID      string                 `json:"id" yaml:"id"`
	Lineage string                 `json:"lineage" yaml:"lineage"`
	Op      string                 `json:"op" yaml:"op"`
	Args    map[string]interface{} `json:"args" yaml:"args"`
}

// Result is the outcome of one Request.
type Result struct {
	RequestID  string      `json:"request_id"`
	Lineage    string      `json:"lineage"`
	Op         string      `json:"op"`
	Value      interface{} `json:"value,omitempty"`
	DurationUs int64       `json:"duration_us"`
	Error      string      `json:"error,omitempty"`

	err error
}

// Err returns the error behind Result.Error, for use with errors.Is.
func (r *Result) Err() error { return r.err }

func (r *Result) fail(err error) *Result {
	r.err = err
	r.Error = err.Error()
	return r
}

// VampireView is the JSON shape of a vampire in results.
type VampireView struct {
	Name          string `json:"name"`
	YearConverted int    `json:"year_converted"`
	Generation    int    `json:"generation"`
	Creator       string `json:"creator,omitempty"`
	Offspring     int    `json:"offspring"`
}

// View renders v for a Result.
func View(v *lineage.Vampire) VampireView {
	view := VampireView{
		Name:          v.Name,
		YearConverted: v.YearConverted,
		Generation:    v.GenerationDepth(),
		Offspring:     v.OffspringCount(),
	}
	if c := v.Creator(); c != nil {
		view.Creator = c.Name
	}
	return view
}

// Views renders vs in order; the result is never nil.
func Views(vs []*lineage.Vampire) []VampireView {
	out := make([]VampireView, 0, len(vs))
	for _, v := range vs {
		out = append(out, View(v))
	}
	return out
}
