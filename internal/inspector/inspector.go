// Package inspector defines the Repository Inspector contract: the external
// collaborator the engine core depends on for tree, search, code-structure,
// and raw file access probes against a source repository. The engine itself
// never touches the filesystem directly — every strategy reaches the
// repository only through this interface.
package inspector

import (
	"context"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// TreeOptions configures a tree() call.
type TreeOptions struct {
	MaxDepth int
	Mode     string
	Path     string
}

// SearchOptions configures a search() call.
type SearchOptions struct {
	Mode         string
	Extensions   []string
	ContextLines int
	MaxResults   int
	Regex        bool
}

// Match is one line-level hit within a file.
type Match struct {
	Path    string
	Line    int
	Content string
	Context []string
}

// SearchResult is the aggregate output of a search() call.
type SearchResult struct {
	Pattern      string
	Matches      []Match
	TotalMatches int
	Truncated    bool
}

// StructureScope narrows a structure() call to a subset of extraction
// concerns; "" requests everything the language's extractor supports.
type StructureScope string

// StructureOptions configures a structure() call.
type StructureOptions struct {
	Scope      StructureScope
	MaxResults int
}

// StructureResult is the aggregate output of a structure() call.
type StructureResult struct {
	CodeMaps           []engine.CodeMap
	FilesWithoutCodemap []string
}

// ListFilesOptions configures a listFiles() call.
type ListFilesOptions struct {
	Include []string
	Exclude []string
}

// ReadFileOptions configures a readFile() call.
type ReadFileOptions struct {
	Offset int
	Limit  int
}

// Inspector is the Repository Inspector contract. Implementations must be
// safe for concurrent use — the planner may issue parallel calls from
// multiple strategies or multiple I/O operations within one strategy.
type Inspector interface {
	// Tree returns a human-readable indented directory tree.
	Tree(ctx context.Context, opts TreeOptions) (string, error)

	// Search returns per-file match lists with line numbers for pattern.
	Search(ctx context.Context, pattern string, opts SearchOptions) (SearchResult, error)

	// Structure extracts language-tagged code maps for the given paths.
	Structure(ctx context.Context, paths []string, opts StructureOptions) (StructureResult, error)

	// ListFiles lists repository-relative paths filtered by include/exclude
	// globs.
	ListFiles(ctx context.Context, opts ListFilesOptions) ([]string, error)

	// ReadFile reads file content, optionally bounded by offset/limit.
	ReadFile(ctx context.Context, path string, opts ReadFileOptions) ([]byte, error)

	// Diff returns paths changed relative to the repository's last commit
	// (or equivalent VCS notion of "recent"), used by the diff strategy.
	Diff(ctx context.Context) ([]string, error)
}
