// Package cache provides content-addressed caching for conversion
// results, with file, Redis, and no-op backends behind one interface.
//
// Keys are derived from the input's content hash plus a fingerprint of
// the conversion options, so identical requests hit regardless of where
// the input came from. The [Keyer] interface builds those keys;
// [ScopedKeyer] prefixes them for namespace isolation in the service.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long conversion results stay cached when the
// configuration does not say otherwise.
const DefaultTTL = 24 * time.Hour

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ResultKeyOpts is the option fingerprint mixed into result keys.
// Any field that changes the produced bytes must appear here.
type ResultKeyOpts struct {
	Mode      string            `json:"mode"`
	Compress  bool              `json:"compress"`
	Direction string            `json:"direction"`
	Types     bool              `json:"types"`
	Gates     map[string]string `json:"gates,omitempty"`
}

// Keyer builds cache keys for conversion results.
type Keyer interface {
	// ResultKey returns the key for a conversion of the input with the
	// given content hash under the given options.
	ResultKey(inputHash string, opts ResultKeyOpts) string
}

// DefaultKeyer hashes the option fingerprint into the key, so keys stay
// fixed-length no matter how large the gate table gets.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ResultKey generates a key of the form "result:<sha256>".
func (k *DefaultKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", inputHash, opts)
}
