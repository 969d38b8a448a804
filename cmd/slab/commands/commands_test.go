package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slab-build/slab/cmd/slab/commands"
	"github.com/slab-build/slab/internal/app"
	"github.com/slab-build/slab/internal/build"
	"github.com/slab-build/slab/internal/core/domain"
)

type mockApp struct {
	buildFunc func(ctx context.Context, opts app.BuildOptions) (*domain.Image, error)
	gcFunc    func(ctx context.Context, opts app.GCOptions) (int, error)
}

func (m *mockApp) Build(ctx context.Context, opts app.BuildOptions) (*domain.Image, error) {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return &domain.Image{ID: "sha256:0000000000000000000000000000000000000000000000000000000000000000"}, nil
}

func (m *mockApp) GC(ctx context.Context, opts app.GCOptions) (int, error) {
	if m.gcFunc != nil {
		return m.gcFunc(ctx, opts)
	}
	return 0, nil
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.BuildOptions
		called := false

		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) (*domain.Image, error) {
				captured = opts
				called = true
				return &domain.Image{ID: "sha256:1111111111111111111111111111111111111111111111111111111111111111"}, nil
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"build", "--config", "custom.yaml", "--no-run-cache", "--timeout", "30s"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "custom.yaml", captured.ConfigPath)
		assert.True(t, captured.NoRunCache)
		assert.Equal(t, 30*time.Second, captured.Timeout)
		assert.Contains(t, buf.String(), "sha256:1111")
	})

	t.Run("returns error on build failure", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(_ context.Context, _ app.BuildOptions) (*domain.Image, error) {
				return nil, errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"build"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_GC(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.GCOptions

		mock := &mockApp{
			gcFunc: func(_ context.Context, opts app.GCOptions) (int, error) {
				captured = opts
				return 3, nil
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"gc", "--older-than", "168h"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.False(t, captured.All)
		assert.Equal(t, 168*time.Hour, captured.OlderThan)
		assert.Contains(t, buf.String(), "evicted 3 layers")
	})

	t.Run("shows usage without a selection", func(t *testing.T) {
		mock := &mockApp{
			gcFunc: func(_ context.Context, _ app.GCOptions) (int, error) {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"gc"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Usage:")
	})
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), build.Version)
}
