package domain

import (
	"io/fs"
	"time"

	"github.com/opencontainers/go-digest"
)

// Layer is an immutable filesystem delta produced by executing one
// instruction. Once committed it is owned by the layer cache; images hold
// references to it but never own it.
type Layer struct {
	Fingerprint Fingerprint   `json:"fingerprint"`
	DiffDigest  digest.Digest `json:"diffDigest"`
	Files       []string      `json:"files,omitempty"`
	Whiteouts   []string      `json:"whiteouts,omitempty"`
	Size        int64         `json:"size"`
	CreatedAt   time.Time     `json:"createdAt"`
	LastUsedAt  time.Time     `json:"lastUsedAt"`
}

// Empty reports whether the layer carries no filesystem changes. Metadata
// instructions (WORKDIR, ENV) commit empty layers so the fingerprint chain
// stays unbroken.
func (l *Layer) Empty() bool {
	return len(l.Files) == 0 && len(l.Whiteouts) == 0
}

// FileState records the observed state of one file in a snapshot.
type FileState struct {
	Hash uint64
	Mode fs.FileMode
}

// Snapshot maps rootfs-relative paths to their observed state. Snapshots are
// taken before and after executing an instruction; their difference is the
// instruction's layer.
type Snapshot map[string]FileState

// Delta is the difference between two snapshots: paths added or modified, and
// paths removed (whiteouts).
type Delta struct {
	Added   []string
	Removed []string
}

// DiffSnapshots computes the delta that turns before into after.
func DiffSnapshots(before, after Snapshot) Delta {
	var d Delta
	for path, state := range after {
		prev, ok := before[path]
		if !ok || prev != state {
			d.Added = append(d.Added, path)
		}
	}
	for path := range before {
		if _, ok := after[path]; !ok {
			d.Removed = append(d.Removed, path)
		}
	}
	return d
}

// EvictPolicy controls garbage collection of the layer cache. Eviction is
// always explicit; layers are never dropped implicitly.
type EvictPolicy struct {
	// All removes every layer from the cache.
	All bool
	// UnusedFor removes layers whose last use is older than the duration.
	// Ignored when All is set or when zero.
	UnusedFor time.Duration
}
