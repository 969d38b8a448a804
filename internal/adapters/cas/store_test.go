package cas_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slab-build/slab/internal/adapters/cas"
	"github.com/slab-build/slab/internal/core/domain"
)

func testFingerprint(s string) domain.Fingerprint {
	return domain.Fingerprint(digest.FromString(s))
}

func writeRootfsFile(t *testing.T, rootfs, rel, content string) {
	t.Helper()
	path := filepath.Join(rootfs, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStoreInsertAndLookup(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	fp := testFingerprint("layer1")
	layer := &domain.Layer{DiffDigest: digest.FromString("content")}
	require.NoError(t, store.Insert(fp, layer))

	got, ok, err := store.Lookup(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fp, got.Fingerprint)
	assert.Equal(t, layer.DiffDigest, got.DiffDigest)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStoreLookupMiss(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	_, ok, err := store.Lookup(testFingerprint("absent"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreInsertIdempotent(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	fp := testFingerprint("layer1")
	layer := &domain.Layer{DiffDigest: digest.FromString("content")}

	require.NoError(t, store.Insert(fp, layer))
	require.NoError(t, store.Insert(fp, layer))
}

func TestStoreInsertConflictIsCorruption(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	fp := testFingerprint("layer1")
	require.NoError(t, store.Insert(fp, &domain.Layer{DiffDigest: digest.FromString("one")}))

	err = store.Insert(fp, &domain.Layer{DiffDigest: digest.FromString("two")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCacheCorruption)
}

func TestStorePersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	store1, err := cas.NewStore(dir)
	require.NoError(t, err)
	fp := testFingerprint("persisted")
	require.NoError(t, store1.Insert(fp, &domain.Layer{DiffDigest: digest.FromString("content")}))

	// A fresh store over the same directory sees the same entries.
	store2, err := cas.NewStore(dir)
	require.NoError(t, err)

	got, ok, err := store2.Lookup(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, digest.FromString("content"), got.DiffDigest)
}

func TestStoreCommitAndApply(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	rootfs := t.TempDir()
	writeRootfsFile(t, rootfs, "app/main.py", "print('hi')")
	writeRootfsFile(t, rootfs, "app/old.py", "stale")

	fp := testFingerprint("step1")
	layer, err := store.Commit(fp, rootfs, domain.Delta{
		Added:   []string{"app/main.py"},
		Removed: []string{"app/old.py"},
	})
	require.NoError(t, err)
	assert.Equal(t, fp, layer.Fingerprint)
	assert.Equal(t, []string{"app/main.py"}, layer.Files)
	assert.Equal(t, []string{"app/old.py"}, layer.Whiteouts)
	assert.Positive(t, layer.Size)

	// Replaying onto a fresh rootfs reproduces the delta.
	fresh := t.TempDir()
	writeRootfsFile(t, fresh, "app/old.py", "stale")
	require.NoError(t, store.Apply(layer, fresh))

	data, err := os.ReadFile(filepath.Join(fresh, "app", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(data))
	assert.NoFileExists(t, filepath.Join(fresh, "app", "old.py"))
}

func TestStoreApplyRestoresFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on windows")
	}

	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	rootfs := t.TempDir()
	writeRootfsFile(t, rootfs, "bin/run.sh", "#!/bin/sh\n")
	require.NoError(t, os.Chmod(filepath.Join(rootfs, "bin", "run.sh"), 0o755))

	layer, err := store.Commit(testFingerprint("chmod"), rootfs, domain.Delta{
		Added: []string{"bin/run.sh"},
	})
	require.NoError(t, err)

	// The destination already exists with different permissions; replaying
	// the layer must restore the committed mode, not just the content.
	fresh := t.TempDir()
	writeRootfsFile(t, fresh, "bin/run.sh", "stale")
	require.NoError(t, store.Apply(layer, fresh))

	info, err := os.Stat(filepath.Join(fresh, "bin", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestStoreCommitDeterministicDigest(t *testing.T) {
	rootfs := t.TempDir()
	writeRootfsFile(t, rootfs, "a.txt", "same content")

	store1, err := cas.NewStore(filepath.Join(t.TempDir(), "c1"))
	require.NoError(t, err)
	store2, err := cas.NewStore(filepath.Join(t.TempDir(), "c2"))
	require.NoError(t, err)

	delta := domain.Delta{Added: []string{"a.txt"}}
	l1, err := store1.Commit(testFingerprint("x"), rootfs, delta)
	require.NoError(t, err)
	l2, err := store2.Commit(testFingerprint("x"), rootfs, delta)
	require.NoError(t, err)

	assert.Equal(t, l1.DiffDigest, l2.DiffDigest)
}

func TestStoreCommitEmptyDelta(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	layer, err := store.Commit(testFingerprint("meta"), t.TempDir(), domain.Delta{})
	require.NoError(t, err)
	assert.True(t, layer.Empty())

	// Applying an empty layer is a no-op.
	require.NoError(t, store.Apply(layer, t.TempDir()))
}

func TestStoreEvictAll(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	rootfs := t.TempDir()
	writeRootfsFile(t, rootfs, "f.txt", "x")
	_, err = store.Commit(testFingerprint("a"), rootfs, domain.Delta{Added: []string{"f.txt"}})
	require.NoError(t, err)
	require.NoError(t, store.Insert(testFingerprint("b"), &domain.Layer{DiffDigest: digest.FromString("b")}))

	removed, err := store.Evict(domain.EvictPolicy{All: true})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok, err := store.Lookup(testFingerprint("a"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreEvictUnusedFor(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	require.NoError(t, store.Insert(testFingerprint("old"), &domain.Layer{DiffDigest: digest.FromString("old")}))

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, store.Insert(testFingerprint("new"), &domain.Layer{DiffDigest: digest.FromString("new")}))

	removed, err := store.Evict(domain.EvictPolicy{UnusedFor: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok, err := store.Lookup(testFingerprint("new"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreEvictZeroPolicy(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	require.NoError(t, store.Insert(testFingerprint("keep"), &domain.Layer{DiffDigest: digest.FromString("k")}))

	removed, err := store.Evict(domain.EvictPolicy{})
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStoreMaterializeSingleFlight(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	fp := testFingerprint("shared")
	var executions atomic.Int32

	const workers = 8
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(workers)

	for range workers {
		go func() {
			defer done.Done()
			start.Wait()

			layer, _, err := store.Materialize(context.Background(), fp, func(context.Context) (*domain.Layer, error) {
				executions.Add(1)
				time.Sleep(20 * time.Millisecond)
				l := &domain.Layer{DiffDigest: digest.FromString("shared")}
				return l, store.Insert(fp, l)
			})
			assert.NoError(t, err)
			assert.NotNil(t, layer)
		}()
	}

	start.Done()
	done.Wait()

	assert.Equal(t, int32(1), executions.Load())
}

func TestStoreMaterializeCachedSkipsBuild(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	fp := testFingerprint("warm")
	require.NoError(t, store.Insert(fp, &domain.Layer{DiffDigest: digest.FromString("w")}))

	layer, executed, err := store.Materialize(context.Background(), fp, func(context.Context) (*domain.Layer, error) {
		t.Fatal("build function must not run for a cached fingerprint")
		return nil, nil
	})
	require.NoError(t, err)
	assert.False(t, executed)
	assert.Equal(t, fp, layer.Fingerprint)
}
