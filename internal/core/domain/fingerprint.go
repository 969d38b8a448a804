package domain

import "github.com/opencontainers/go-digest"

// Fingerprint is a content-derived identifier for a layer. It is an OCI-style
// digest computed from an instruction's type, its literal arguments, the
// content of any context files it touches, and the fingerprint of the
// preceding layer. Identical instruction sequences over identical context
// content always yield identical fingerprints.
type Fingerprint string

// String returns the canonical algo:hex representation.
func (f Fingerprint) String() string { return string(f) }

// Encoded returns the hex portion of the fingerprint, suitable for use as a
// file or directory name.
func (f Fingerprint) Encoded() string { return digest.Digest(f).Encoded() }

// Algorithm returns the digest algorithm prefix.
func (f Fingerprint) Algorithm() string { return string(digest.Digest(f).Algorithm()) }

// Validate reports whether the fingerprint is a well-formed digest.
func (f Fingerprint) Validate() error { return digest.Digest(f).Validate() }
