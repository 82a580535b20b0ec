// Package cache provides content-addressed caching for analysis results.
//
// Profiles never mutate after validation, and the dominance relation is a
// pure function of the profile, so every derived artifact can be cached by
// content hash: relations by profile hash, search results by relation hash
// plus predicate identity and options, rendered diagrams by graph hash plus
// format. The Keyer centralizes this key construction.
//
// Two backends are provided: FileCache for the CLI (entries under the user
// cache directory, with TTL metadata) and NullCache to disable caching.
package cache

import (
	"context"
	"time"
)

// TTLs per artifact class. Derivations are deterministic, so these mostly
// bound disk usage rather than staleness.
const (
	// TTLRelation is the lifetime of cached dominance relations.
	TTLRelation = 30 * 24 * time.Hour

	// TTLResult is the lifetime of cached search results.
	TTLResult = 30 * 24 * time.Hour

	// TTLArtifact is the lifetime of rendered diagram artifacts.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ResultKeyOpts carries the search options that distinguish otherwise
// identical (relation, predicate) cache entries.
type ResultKeyOpts struct {
	Mode    string `json:"mode"`
	W       int    `json:"w"`
	M       int    `json:"m"`
	Explain bool   `json:"explain"`
}

// Keyer builds cache keys for the analysis artifact classes.
type Keyer interface {
	// RelationKey keys a dominance relation by its profile's content hash.
	RelationKey(profileHash string) string

	// ResultKey keys a search result by relation hash, predicate identity,
	// and the options that affect the outcome.
	ResultKey(relationHash, predicate string, opts ResultKeyOpts) string

	// ArtifactKey keys a rendered diagram by graph hash, edge selection,
	// and output format.
	ArtifactKey(graphHash, edges, format string) string
}

// DefaultKeyer is the standard key builder.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key builder.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// RelationKey generates a key for relation caching.
func (k *DefaultKeyer) RelationKey(profileHash string) string {
	return hashKey("relation", profileHash)
}

// ResultKey generates a key for search result caching.
func (k *DefaultKeyer) ResultKey(relationHash, predicate string, opts ResultKeyOpts) string {
	return hashKey("result", relationHash, predicate, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(graphHash, edges, format string) string {
	return hashKey("artifact", graphHash, edges, format)
}
