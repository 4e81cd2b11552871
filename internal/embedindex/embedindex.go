// Package embedindex defines the Embedding Index contract the semantic
// strategy depends on, plus a local, on-disk default implementation backed
// by philippgille/chromem-go.
package embedindex

import "context"

// Neighbor is one nearest-neighbor hit returned by a Query.
type Neighbor struct {
	Path       string
	Similarity float64
}

// Index is the contract a strategy needing embedding-nearest-neighbor
// lookups depends on. It is optional: strategies relying on it must report
// IsAvailable() == false when none is configured.
type Index interface {
	// Query returns the top-n nearest neighbors to text, excluding any path
	// in exclude.
	Query(ctx context.Context, text string, n int, exclude []string) ([]Neighbor, error)

	// Size reports how many documents are indexed, used for availability
	// checks (an empty index is effectively unavailable).
	Size() int
}
