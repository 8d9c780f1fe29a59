package harness

import (
	"github.com/roach88/scenesmith/internal/engine"
	"github.com/roach88/scenesmith/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RunID is the id the batch was stored under.
	RunID string `json:"run_id"`

	// BatchHash is the content hash of the placed instances.
	BatchHash string `json:"batch_hash"`

	// Instances are the placed instances as read back from the store.
	Instances []ir.Instance `json:"instances"`

	// Outcomes has one entry per requested iteration.
	Outcomes []engine.Outcome `json:"outcomes"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Errors:    []string{},
		Instances: []ir.Instance{},
		Outcomes:  []engine.Outcome{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Shortfall returns how many requested events were not placed.
func (r *Result) Shortfall() int {
	return len(r.Outcomes) - len(r.Instances)
}
