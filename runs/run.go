package runs

import (
	"fmt"

	"github.com/google/uuid"

	"rule-orchestrator/rules"
)

// RunStatus is the lifecycle state of a validation run.
type RunStatus string

const (
	// StatusSubmitted: accepted, not yet executing.
	StatusSubmitted RunStatus = "submitted"
	// StatusRunning: the batch is being evaluated.
	StatusRunning RunStatus = "running"
	// StatusDone: every dispatched rule passed or opted out.
	StatusDone RunStatus = "done"
	// StatusRejected: a business rule vetoed the run. Not an error.
	StatusRejected RunStatus = "rejected"
	// StatusFailed: infrastructure failure (missing handler, bad payload).
	StatusFailed RunStatus = "failed"
)

func (s RunStatus) String() string {
	return string(s)
}

// IsFinal reports whether the run can change state again.
func (s RunStatus) IsFinal() bool {
	switch s {
	case StatusDone, StatusRejected, StatusFailed:
		return true
	default:
		return false
	}
}

// IsActive reports whether the run is currently executing.
func (s RunStatus) IsActive() bool {
	return s == StatusRunning
}

// validTransitions encodes the run lifecycle. Submitted runs may fail
// directly when enqueueing breaks before execution starts.
var validTransitions = map[RunStatus][]RunStatus{
	StatusSubmitted: {StatusRunning, StatusFailed},
	StatusRunning:   {StatusDone, StatusRejected, StatusFailed},
}

// CanTransitionTo validates a state change against the run lifecycle.
func (s RunStatus) CanTransitionTo(next RunStatus) error {
	for _, allowed := range validTransitions[s] {
		if next == allowed {
			return nil
		}
	}
	return fmt.Errorf("invalid run status transition from %q to %q", s, next)
}

// Run is one batch of heterogeneous rule parameters submitted together.
// Rules are carried in encoded form so runs can cross the queue boundary;
// Results preserve dispatch order up to the stop point.
type Run struct {
	ID      string             `json:"id"`
	Rules   []rules.Encoded    `json:"rules"`
	Status  RunStatus          `json:"status"`
	Results []rules.RuleResult `json:"results,omitempty"`
	// Error holds the infrastructure failure that aborted the run, empty
	// for done and rejected runs.
	Error string `json:"error,omitempty"`
}

// NewRun creates a submitted run with a fresh ID.
func NewRun(specs []rules.Encoded) *Run {
	return &Run{
		ID:     uuid.New().String(),
		Rules:  specs,
		Status: StatusSubmitted,
	}
}

// SetStatus transitions the run, rejecting invalid lifecycle moves.
func (r *Run) SetStatus(next RunStatus) error {
	if err := r.Status.CanTransitionTo(next); err != nil {
		return err
	}
	r.Status = next
	return nil
}
