package domain

import "go.trai.ch/zerr"

var (
	// ErrMalformedInstruction is returned when a recipe line cannot be parsed
	// into a valid instruction.
	ErrMalformedInstruction = zerr.New("malformed instruction")

	// ErrMissingContextPath is returned when a copy source does not exist in
	// the build context.
	ErrMissingContextPath = zerr.New("copy source not found in build context")

	// ErrPathEscapesContext is returned when a path would resolve outside the
	// build context or the image filesystem.
	ErrPathEscapesContext = zerr.New("path escapes the build context")

	// ErrStepExecutionFailed is returned when a run instruction exits with a
	// nonzero status.
	ErrStepExecutionFailed = zerr.New("step execution failed")

	// ErrStepTimeout is returned when a run instruction exceeds the
	// caller-supplied step timeout.
	ErrStepTimeout = zerr.New("step timed out")

	// ErrCacheCorruption indicates two different layer contents were produced
	// for the same fingerprint. It is fatal to the whole cache: it signals a
	// hashing bug or non-determinism upstream, and the cache should be fully
	// invalidated rather than trusted further.
	ErrCacheCorruption = zerr.New("layer cache corruption")

	// ErrEmptyLayerSequence is returned when assembling an image from no
	// layers.
	ErrEmptyLayerSequence = zerr.New("empty layer sequence")

	// ErrMissingWorkdir is returned when image metadata lacks the required
	// working directory.
	ErrMissingWorkdir = zerr.New("image metadata missing working directory")

	// ErrBuildCancelled is returned when a build is cancelled between steps.
	ErrBuildCancelled = zerr.New("build cancelled")

	// ErrInvalidStateTransition indicates a bug in the executor's step state
	// machine.
	ErrInvalidStateTransition = zerr.New("invalid step state transition")

	// ErrStoreReadFailed is returned when the cache manifest cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache manifest")

	// ErrStoreWriteFailed is returned when the cache manifest cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache manifest")

	// ErrStoreCreateFailed is returned when the cache directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache directory")

	// ErrConfigReadFailed is returned when the build config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the build config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrRecipeReadFailed is returned when the recipe file cannot be read.
	ErrRecipeReadFailed = zerr.New("failed to read recipe file")
)
