package builder

import (
	"go.trai.ch/zerr"

	"github.com/slab-build/slab/internal/core/domain"
)

// StepState represents the lifecycle state of a single build step.
type StepState string

const (
	// StatePending indicates the step is waiting to be processed.
	StatePending StepState = "Pending"
	// StateCacheChecking indicates the step's fingerprint is being looked up.
	StateCacheChecking StepState = "CacheChecking"
	// StateCacheHit indicates a cached layer satisfies the step.
	StateCacheHit StepState = "CacheHit"
	// StateExecuting indicates the step is mutating the staging filesystem.
	StateExecuting StepState = "Executing"
	// StateCommitting indicates the step's delta is being stored.
	StateCommitting StepState = "Committing"
	// StateCommitted indicates the step finished and its layer is cached.
	StateCommitted StepState = "Committed"
	// StateFailing indicates the step encountered an error.
	StateFailing StepState = "Failing"
	// StateAborted indicates the step was abandoned after a failure.
	StateAborted StepState = "Aborted"
)

// validTransitions enumerates the legal step lifecycle. Committed and
// Aborted are terminal.
var validTransitions = map[StepState][]StepState{
	StatePending:       {StateCacheChecking, StateFailing},
	StateCacheChecking: {StateCacheHit, StateExecuting, StateFailing},
	StateCacheHit:      {StateCommitted, StateFailing},
	StateExecuting:     {StateCommitting, StateFailing},
	StateCommitting:    {StateCommitted, StateFailing},
	StateFailing:       {StateAborted},
}

// StepTracker enforces the step lifecycle. An out-of-order transition is a
// bug in the executor, not a build failure.
type StepTracker struct {
	state StepState
}

// NewStepTracker creates a tracker in the Pending state.
func NewStepTracker() *StepTracker {
	return &StepTracker{state: StatePending}
}

// State returns the current state.
func (t *StepTracker) State() StepState {
	return t.state
}

// Transition moves the tracker to next, rejecting illegal transitions.
func (t *StepTracker) Transition(next StepState) error {
	for _, allowed := range validTransitions[t.state] {
		if allowed == next {
			t.state = next
			return nil
		}
	}
	return zerr.With(
		zerr.With(domain.ErrInvalidStateTransition, "from", string(t.state)),
		"to", string(next),
	)
}
