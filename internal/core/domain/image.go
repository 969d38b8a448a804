package domain

import (
	"time"

	"github.com/opencontainers/go-digest"
)

// ImageMetadata is the runtime configuration carried by an image.
type ImageMetadata struct {
	Workdir    string            `json:"workdir" yaml:"workdir"`
	Entrypoint []string          `json:"entrypoint,omitempty" yaml:"entrypoint"`
	Env        map[string]string `json:"env,omitempty" yaml:"env"`
}

// Image is an ordered stack of layer references plus metadata. It is created
// by the assembler and never mutated in place; rebuilding produces a new
// Image.
type Image struct {
	ID        digest.Digest `json:"id"`
	Layers    []Fingerprint `json:"layers"`
	Metadata  ImageMetadata `json:"metadata"`
	CreatedAt time.Time     `json:"createdAt"`
}
