package app_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slab-build/slab/internal/adapters/cas"
	"github.com/slab-build/slab/internal/adapters/config"
	"github.com/slab-build/slab/internal/adapters/fs"
	"github.com/slab-build/slab/internal/adapters/logger"
	"github.com/slab-build/slab/internal/adapters/recipe"
	"github.com/slab-build/slab/internal/adapters/shell"
	"github.com/slab-build/slab/internal/app"
	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/core/ports"
	"github.com/slab-build/slab/internal/engine/builder"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer { return io.Discard }
func (noopVertex) Stderr() io.Writer { return io.Discard }
func (noopVertex) Cached()           {}
func (noopVertex) Complete(error)    {}

type noopTelemetry struct{}

func (noopTelemetry) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

func (noopTelemetry) Close() error { return nil }

type testProject struct {
	app      *app.App
	dir      string
	stateDir string
}

func newTestProject(t *testing.T) *testProject {
	t.Helper()

	stateDir := t.TempDir()
	store, err := cas.NewStore(filepath.Join(stateDir, "cache"))
	require.NoError(t, err)

	log := logger.New()
	log.SetOutput(io.Discard)

	b := builder.NewBuilder(
		fs.NewFingerprinter(fs.NewWalker()),
		store,
		shell.NewRunner(log),
		fs.NewStager(),
		fs.NewSnapshotter(),
		noopTelemetry{},
		log,
		t.TempDir(),
	)

	return &testProject{
		app:      app.New(config.NewLoader(), recipe.NewParser(), b, store, log, stateDir),
		dir:      t.TempDir(),
		stateDir: stateDir,
	}
}

func (p *testProject) write(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(p.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (p *testProject) configPath() string {
	return filepath.Join(p.dir, config.DefaultFilename)
}

const testConfig = `version: "1"
recipe: slabfile
context: .
image:
  workdir: /app
  entrypoint: ["sh"]
  env:
    PORT: "8080"
`

func TestAppBuild(t *testing.T) {
	requireUnix(t)
	p := newTestProject(t)
	p.write(t, config.DefaultFilename, testConfig)
	p.write(t, "slabfile", "WORKDIR /app\nCOPY server.txt .\nRUN sh -c \"test -f server.txt\"\n")
	p.write(t, "server.txt", "payload\n")

	img, err := p.app.Build(context.Background(), app.BuildOptions{ConfigPath: p.configPath()})
	require.NoError(t, err)

	require.Len(t, img.Layers, 3)
	assert.Equal(t, "/app", img.Metadata.Workdir)
	assert.Equal(t, []string{"sh"}, img.Metadata.Entrypoint)
	assert.NoError(t, img.ID.Validate())

	descriptor := filepath.Join(p.stateDir, "images", img.ID.Encoded()+".json")
	_, err = os.Stat(descriptor)
	assert.NoError(t, err)
}

func TestAppBuildIsRepeatable(t *testing.T) {
	requireUnix(t)
	p := newTestProject(t)
	p.write(t, config.DefaultFilename, testConfig)
	p.write(t, "slabfile", "COPY data.txt /data/\nRUN true\n")
	p.write(t, "data.txt", "v1\n")

	first, err := p.app.Build(context.Background(), app.BuildOptions{ConfigPath: p.configPath()})
	require.NoError(t, err)
	second, err := p.app.Build(context.Background(), app.BuildOptions{ConfigPath: p.configPath()})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Layers, second.Layers)
}

func TestAppBuildMissingConfig(t *testing.T) {
	p := newTestProject(t)

	_, err := p.app.Build(context.Background(), app.BuildOptions{
		ConfigPath: filepath.Join(p.dir, "nosuch.yaml"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigReadFailed))
}

func TestAppBuildMalformedRecipe(t *testing.T) {
	p := newTestProject(t)
	p.write(t, config.DefaultFilename, testConfig)
	p.write(t, "slabfile", "COPY onlyonearg\n")

	_, err := p.app.Build(context.Background(), app.BuildOptions{ConfigPath: p.configPath()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedInstruction))
}

func TestAppBuildStepFailure(t *testing.T) {
	requireUnix(t)
	p := newTestProject(t)
	p.write(t, config.DefaultFilename, testConfig)
	p.write(t, "slabfile", "RUN sh -c \"exit 7\"\n")

	_, err := p.app.Build(context.Background(), app.BuildOptions{ConfigPath: p.configPath()})
	require.Error(t, err)

	var failure *domain.StepFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 0, failure.Index)
	assert.True(t, errors.Is(err, domain.ErrStepExecutionFailed))
}

func TestAppGC(t *testing.T) {
	requireUnix(t)
	p := newTestProject(t)
	p.write(t, config.DefaultFilename, testConfig)
	p.write(t, "slabfile", "COPY a.txt /\nRUN true\n")
	p.write(t, "a.txt", "a\n")

	_, err := p.app.Build(context.Background(), app.BuildOptions{ConfigPath: p.configPath()})
	require.NoError(t, err)

	removed, err := p.app.GC(context.Background(), app.GCOptions{All: true})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = p.app.GC(context.Background(), app.GCOptions{All: true})
	require.NoError(t, err)
	assert.Zero(t, removed)
}
