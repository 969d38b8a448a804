package domain

import (
	"fmt"
	"time"
)

// BuildRequest is one top-level build: an ordered instruction sequence plus
// the context it draws files from.
type BuildRequest struct {
	Instructions []Instruction

	// ContextDir is the root of the build context. Copy instructions resolve
	// their sources against it.
	ContextDir string

	// StepTimeout bounds the execution of a single instruction. Zero means no
	// timeout.
	StepTimeout time.Duration

	// DisableRunCache forces RUN instructions to execute even when a cached
	// layer exists for their fingerprint.
	DisableRunCache bool
}

// BuildConfig is the validated content of a slab.yaml file.
type BuildConfig struct {
	Recipe      string
	ContextDir  string
	Metadata    ImageMetadata
	RunCache    bool
	StepTimeout time.Duration
}

// StepFailure is the structured failure of a single build step. It names the
// offending instruction by index and kind and carries the tail of any
// captured output.
type StepFailure struct {
	Index  int
	Kind   InstructionKind
	Output string
	Err    error
}

// Error implements the error interface.
func (f *StepFailure) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", f.Index, f.Kind, f.Err)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (f *StepFailure) Unwrap() error { return f.Err }
