// Package builder implements the sequential layered build executor.
package builder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"go.trai.ch/zerr"

	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/core/ports"
)

// outputTailLimit bounds the captured output carried by a step failure.
const outputTailLimit = 4096

// Builder executes a build request as a strictly ordered sequence of layer
// steps. Each step is fingerprinted against the preceding layer, satisfied
// from the layer cache when possible, and otherwise executed against a
// staging filesystem whose delta is committed as a new layer. Steps within
// one build never reorder or overlap; independent builds may run
// concurrently, sharing only the cache.
type Builder struct {
	fingerprinter ports.Fingerprinter
	cache         ports.LayerCache
	runner        ports.CommandRunner
	stager        ports.ContextStager
	snapshots     ports.Snapshotter
	telemetry     ports.Telemetry
	logger        ports.Logger
	workRoot      string
}

// NewBuilder creates a new Builder staging its builds under workRoot.
func NewBuilder(
	fingerprinter ports.Fingerprinter,
	cache ports.LayerCache,
	runner ports.CommandRunner,
	stager ports.ContextStager,
	snapshots ports.Snapshotter,
	telemetry ports.Telemetry,
	logger ports.Logger,
	workRoot string,
) *Builder {
	return &Builder{
		fingerprinter: fingerprinter,
		cache:         cache,
		runner:        runner,
		stager:        stager,
		snapshots:     snapshots,
		telemetry:     telemetry,
		logger:        logger,
		workRoot:      workRoot,
	}
}

// buildState is the mutable state threaded through one build's steps.
type buildState struct {
	rootfs  string
	workdir string
	env     []string
	parent  domain.Fingerprint
	salt    string
	layers  []domain.Fingerprint
}

// Build executes req and returns the ordered fingerprints of its committed
// layers. On failure the committed prefix stays cached and the error is a
// *domain.StepFailure naming the offending step.
func (b *Builder) Build(ctx context.Context, req domain.BuildRequest) ([]domain.Fingerprint, error) {
	rootfs := filepath.Join(b.workRoot, "build-"+uuid.NewString())
	if err := os.MkdirAll(rootfs, 0o755); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create staging rootfs"), "path", rootfs)
	}
	defer os.RemoveAll(rootfs) //nolint:errcheck // Best effort cleanup

	state := &buildState{
		rootfs:  rootfs,
		workdir: "/",
		salt:    uuid.NewString(),
	}

	b.logger.Info(fmt.Sprintf("building %d steps", len(req.Instructions)))

	for i, instr := range req.Instructions {
		if err := b.step(ctx, req, state, i, instr); err != nil {
			return nil, err
		}
	}

	return state.layers, nil
}

func (b *Builder) step(
	ctx context.Context,
	req domain.BuildRequest,
	state *buildState,
	index int,
	instr domain.Instruction,
) error {
	tracker := NewStepTracker()

	// Cancellation is only honored between steps; an in-flight command is
	// killed by its own context.
	if err := ctx.Err(); err != nil {
		return zerr.With(domain.ErrBuildCancelled, "step_index", index)
	}

	fp, err := b.fingerprint(req, state, instr)
	if err != nil {
		return b.fail(tracker, nil, index, instr, "", err)
	}

	// The step index keeps repeated instructions on distinct vertices.
	name := fmt.Sprintf("[%d/%d] %s", index+1, len(req.Instructions), instr.String())
	ctx, vertex := b.telemetry.Record(ctx, name)

	if err := tracker.Transition(StateCacheChecking); err != nil {
		return err
	}

	layer, hit, err := b.cache.Lookup(fp)
	if err != nil {
		return b.fail(tracker, vertex, index, instr, "", err)
	}

	if hit {
		if err := tracker.Transition(StateCacheHit); err != nil {
			return err
		}
		if err := b.cache.Apply(layer, state.rootfs); err != nil {
			return b.fail(tracker, vertex, index, instr, "", err)
		}
		vertex.Cached()
		return b.commit(tracker, vertex, state, instr, fp)
	}

	var output bytes.Buffer
	layer, executed, err := b.cache.Materialize(ctx, fp, func(ctx context.Context) (*domain.Layer, error) {
		return b.execute(ctx, req, state, tracker, vertex, instr, fp, &output)
	})
	if err != nil {
		return b.fail(tracker, vertex, index, instr, tail(output.Bytes()), err)
	}

	if !executed {
		// A concurrent build materialized this layer first. Our staging
		// filesystem was never touched, so replay the stored delta.
		if err := tracker.Transition(StateCacheHit); err != nil {
			return err
		}
		if err := b.cache.Apply(layer, state.rootfs); err != nil {
			return b.fail(tracker, vertex, index, instr, "", err)
		}
		vertex.Cached()
	}

	return b.commit(tracker, vertex, state, instr, fp)
}

// commit finalizes a successful step: the layer joins the chain and metadata
// instructions update the state visible to subsequent steps.
func (b *Builder) commit(
	tracker *StepTracker,
	vertex ports.Vertex,
	state *buildState,
	instr domain.Instruction,
	fp domain.Fingerprint,
) error {
	switch instr.Kind {
	case domain.KindSetWorkdir:
		state.workdir = instr.Dir
		// The directory must exist on this build's rootfs even when the
		// step was a cache hit, since empty layers carry no files.
		dir, err := securejoin.SecureJoin(state.rootfs, instr.Dir)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "dir", instr.Dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create working directory"), "dir", instr.Dir)
		}
	case domain.KindSetEnv:
		state.env = append(state.env, instr.Key+"="+instr.Value)
	}

	state.parent = fp
	state.layers = append(state.layers, fp)
	vertex.Complete(nil)
	return tracker.Transition(StateCommitted)
}

// execute runs inside the cache's single-flight slot: it mutates the staging
// filesystem, snapshots the resulting delta, and commits it as a layer.
func (b *Builder) execute(
	ctx context.Context,
	req domain.BuildRequest,
	state *buildState,
	tracker *StepTracker,
	vertex ports.Vertex,
	instr domain.Instruction,
	fp domain.Fingerprint,
	output *bytes.Buffer,
) (*domain.Layer, error) {
	if err := tracker.Transition(StateExecuting); err != nil {
		return nil, err
	}

	before, err := b.snapshots.Capture(state.rootfs)
	if err != nil {
		return nil, err
	}

	if err := b.mutate(ctx, req, state, vertex, instr, output); err != nil {
		return nil, err
	}

	after, err := b.snapshots.Capture(state.rootfs)
	if err != nil {
		return nil, err
	}

	if err := tracker.Transition(StateCommitting); err != nil {
		return nil, err
	}

	return b.cache.Commit(fp, state.rootfs, domain.DiffSnapshots(before, after))
}

func (b *Builder) mutate(
	ctx context.Context,
	req domain.BuildRequest,
	state *buildState,
	vertex ports.Vertex,
	instr domain.Instruction,
	output *bytes.Buffer,
) error {
	switch instr.Kind {
	case domain.KindCopyFiles:
		return b.stager.Stage(req.ContextDir, instr.Src, state.rootfs, resolveDest(state.workdir, instr.Dest))
	case domain.KindRunCommand:
		return b.runCommand(ctx, req, state, vertex, instr, output)
	case domain.KindSetWorkdir, domain.KindSetEnv:
		// Metadata instructions commit empty layers; the state change is
		// applied when the step commits so cache hits behave identically.
		return nil
	default:
		return zerr.With(domain.ErrMalformedInstruction, "kind", string(instr.Kind))
	}
}

func (b *Builder) runCommand(
	ctx context.Context,
	req domain.BuildRequest,
	state *buildState,
	vertex ports.Vertex,
	instr domain.Instruction,
	output *bytes.Buffer,
) error {
	if req.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.StepTimeout)
		defer cancel()
	}

	dir, err := securejoin.SecureJoin(state.rootfs, state.workdir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "dir", state.workdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create working directory"), "dir", state.workdir)
	}

	cmd := domain.Command{
		Argv: instr.Argv,
		Dir:  dir,
		Env:  state.env,
	}
	stdout := io.MultiWriter(vertex.Stdout(), output)
	stderr := io.MultiWriter(vertex.Stderr(), output)
	return b.runner.Run(ctx, cmd, stdout, stderr)
}

// fingerprint derives the step's fingerprint. With run caching disabled, run
// steps chain off a salted parent unique to this build, so they always miss
// the cache while downstream fingerprints stay coherent.
func (b *Builder) fingerprint(
	req domain.BuildRequest,
	state *buildState,
	instr domain.Instruction,
) (domain.Fingerprint, error) {
	parent := state.parent
	if req.DisableRunCache && instr.Kind == domain.KindRunCommand {
		parent = domain.Fingerprint(digest.FromString(parent.String() + "\x00" + state.salt))
	}
	return b.fingerprinter.Fingerprint(instr, parent, req.ContextDir)
}

func (b *Builder) fail(
	tracker *StepTracker,
	vertex ports.Vertex,
	index int,
	instr domain.Instruction,
	output string,
	err error,
) error {
	if terr := tracker.Transition(StateFailing); terr != nil {
		return terr
	}
	if terr := tracker.Transition(StateAborted); terr != nil {
		return terr
	}

	failure := &domain.StepFailure{
		Index:  index,
		Kind:   instr.Kind,
		Output: output,
		Err:    err,
	}
	if vertex != nil {
		vertex.Complete(failure)
	}
	b.logger.Error(failure)
	return failure
}

// resolveDest makes a relative copy destination absolute against the current
// working directory, preserving a trailing slash's directory meaning.
func resolveDest(workdir, dest string) string {
	if path.IsAbs(dest) {
		return dest
	}
	resolved := path.Join(workdir, dest)
	if strings.HasSuffix(dest, "/") {
		resolved += "/"
	}
	return resolved
}

func tail(b []byte) string {
	if len(b) > outputTailLimit {
		b = b[len(b)-outputTailLimit:]
	}
	return string(b)
}
