// Package cache stores rendered chart artifacts.
//
// Rendering is deterministic for a dataset, a set of chart options and a
// viewport, so an artifact can be keyed by the hash of those inputs. The
// [Cache] interface has four backends:
//   - [FileCache]: files under a directory, for the CLI
//   - [RedisCache]: a Redis server, shared between server instances
//   - [MemoryCache]: an in-process map, the server default
//   - [NullCache]: stores nothing
//
// Keys come from a [Keyer]; [ScopedKeyer] prefixes them per tenant.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 24 * time.Hour

// ArtifactKeyOpts are the render inputs that change an artifact.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Scale   float64 `json:"scale,omitempty"`
	Options string  `json:"options"`
	XMin    float64 `json:"x_min,omitempty"`
	XMax    float64 `json:"x_max,omitempty"`
	Title   string  `json:"title,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// DatasetKey keys a parsed dataset by the hash of its source bytes.
	DatasetKey(sourceHash string) string

	// ArtifactKey keys a rendered artifact of a dataset.
	ArtifactKey(dataHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) DatasetKey(sourceHash string) string {
	return "dataset:" + sourceHash
}

func (DefaultKeyer) ArtifactKey(dataHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", dataHash, opts)
}
