package embedindex

import (
	"context"
	"fmt"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"
)

// LocalIndex is the default Index implementation: a persistent chromem-go
// collection stored under the repository's .contextslicer directory,
// populated once at startup from the repository's source files.
type LocalIndex struct {
	collection *chromem.Collection
}

// Open opens (creating if absent) a persistent chromem-go database at
// dbPath and the named collection within it, using embeddingFunc to embed
// both indexed documents and queries.
func Open(dbPath, collectionName string, embeddingFunc chromem.EmbeddingFunc) (*LocalIndex, error) {
	db, err := chromem.NewPersistentDB(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("opening embedding index at %s: %w", dbPath, err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", collectionName, err)
	}

	return &LocalIndex{collection: collection}, nil
}

// DefaultPath is the conventional on-disk location for a repository's local
// embedding index, mirroring the .contextslicer/ config directory
// convention used elsewhere.
func DefaultPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".contextslicer", "embeddings")
}

// Index adds or updates a document's embedding, keyed by its repository-
// relative path.
func (l *LocalIndex) Index(ctx context.Context, path, content string) error {
	return l.collection.AddDocument(ctx, chromem.Document{
		ID:      path,
		Content: content,
	})
}

// Query returns the top-n nearest neighbors to text, excluding any path in
// exclude.
func (l *LocalIndex) Query(ctx context.Context, text string, n int, exclude []string) ([]Neighbor, error) {
	if l.collection.Count() == 0 {
		return nil, nil
	}
	excluded := make(map[string]bool, len(exclude))
	for _, path := range exclude {
		excluded[path] = true
	}

	// Over-fetch to compensate for excluded neighbors, capped by the
	// collection's actual size.
	fetch := n + len(exclude)
	if fetch > l.collection.Count() {
		fetch = l.collection.Count()
	}
	if fetch == 0 {
		return nil, nil
	}

	results, err := l.collection.Query(ctx, text, fetch, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying embedding index: %w", err)
	}

	var neighbors []Neighbor
	for _, r := range results {
		if excluded[r.ID] {
			continue
		}
		neighbors = append(neighbors, Neighbor{Path: r.ID, Similarity: float64(r.Similarity)})
		if len(neighbors) >= n {
			break
		}
	}
	return neighbors, nil
}

// Size reports the number of indexed documents.
func (l *LocalIndex) Size() int {
	return l.collection.Count()
}

var _ Index = (*LocalIndex)(nil)
