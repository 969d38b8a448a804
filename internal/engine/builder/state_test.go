package builder_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/engine/builder"
)

func TestStepTrackerStartsAtPending(t *testing.T) {
	tracker := builder.NewStepTracker()
	assert.Equal(t, builder.StatePending, tracker.State())
}

func TestStepTrackerValidPaths(t *testing.T) {
	tests := []struct {
		name string
		path []builder.StepState
	}{
		{
			name: "cache hit",
			path: []builder.StepState{
				builder.StateCacheChecking,
				builder.StateCacheHit,
				builder.StateCommitted,
			},
		},
		{
			name: "cache miss",
			path: []builder.StepState{
				builder.StateCacheChecking,
				builder.StateExecuting,
				builder.StateCommitting,
				builder.StateCommitted,
			},
		},
		{
			name: "execution failure",
			path: []builder.StepState{
				builder.StateCacheChecking,
				builder.StateExecuting,
				builder.StateFailing,
				builder.StateAborted,
			},
		},
		{
			name: "pre-execution failure",
			path: []builder.StepState{
				builder.StateFailing,
				builder.StateAborted,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := builder.NewStepTracker()
			for _, next := range tt.path {
				require.NoError(t, tracker.Transition(next))
			}
			assert.Equal(t, tt.path[len(tt.path)-1], tracker.State())
		})
	}
}

func TestStepTrackerRejectsInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []builder.StepState
		next builder.StepState
	}{
		{name: "pending to executing", next: builder.StateExecuting},
		{name: "pending to committed", next: builder.StateCommitted},
		{
			name: "committed is terminal",
			path: []builder.StepState{
				builder.StateCacheChecking,
				builder.StateCacheHit,
				builder.StateCommitted,
			},
			next: builder.StateExecuting,
		},
		{
			name: "aborted is terminal",
			path: []builder.StepState{
				builder.StateFailing,
				builder.StateAborted,
			},
			next: builder.StateCacheChecking,
		},
		{
			name: "no skipping commit",
			path: []builder.StepState{
				builder.StateCacheChecking,
				builder.StateExecuting,
			},
			next: builder.StateCommitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := builder.NewStepTracker()
			for _, next := range tt.path {
				require.NoError(t, tracker.Transition(next))
			}

			err := tracker.Transition(tt.next)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
		})
	}
}
