package strategies

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Graph emits codemaps for the import-graph neighbors of matchedFiles: for
// each matched file's codemap dependencies, it resolves same-repository
// imports back to file paths and emits their codemaps.
type Graph struct{}

func NewGraph() *Graph { return &Graph{} }

func (g *Graph) Name() string              { return "graph" }
func (g *Graph) DefaultWeight() float64    { return 0.45 }
func (g *Graph) DefaultBudgetCap() float64 { return 0.15 }

func (g *Graph) IsAvailable(ctx context.Context, sc *StrategyContext) bool {
	return len(sc.State.Snapshot()) > 0
}

// node is one entry in the arena of discovered import-graph nodes, indexed
// by position rather than pointer to keep traversal cycle-safe.
type node struct {
	path string
}

func (g *Graph) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	seeds := sc.State.Snapshot()
	structures, err := sc.Inspector.Structure(ctx, seeds, inspector.StructureOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(g.Name(), "extracting structure: %v", err))
		return result
	}

	allFiles, err := sc.Inspector.ListFiles(ctx, inspector.ListFilesOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(g.Name(), "listing files: %v", err))
		return result
	}

	// arena of candidate neighbor nodes, deduplicated by index
	var arena []node
	index := make(map[string]int)
	visited := make(map[string]bool)
	for _, path := range seeds {
		visited[path] = true
	}

	for _, cm := range structures.CodeMaps {
		for _, dep := range cm.Dependencies {
			neighbor := resolveImport(dep, allFiles)
			if neighbor == "" || visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			if _, ok := index[neighbor]; !ok {
				index[neighbor] = len(arena)
				arena = append(arena, node{path: neighbor})
			}
		}
	}

	var neighborPaths []string
	for _, n := range arena {
		neighborPaths = append(neighborPaths, n.path)
	}
	neighborPaths = capPaths(neighborPaths, sc.Knobs.MaxItems)
	if len(neighborPaths) == 0 {
		return result
	}

	neighborStructures, err := sc.Inspector.Structure(ctx, neighborPaths, inspector.StructureOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(g.Name(), "extracting neighbor structure: %v", err))
		return result
	}

	for _, cm := range neighborStructures.CodeMaps {
		rendered := renderCodemap(cm)
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(g.Name(), cm.Path),
			Path:           cm.Path,
			Strategy:       g.Name(),
			Representation: engine.RepresentationCodemap,
			Tokens:         sc.Estimate(rendered),
			Relevance:      0.45,
			Reason:         "import-graph neighbor of a matched file",
			Source:         "import graph",
			Codemap:        rendered,
			Alternates:     buildAlternates(cm.Path, "import neighbor", sc.Estimate),
		})
	}

	return result
}

// resolveImport best-effort matches an import/dependency string against the
// repository's own file listing, for same-repo (non-vendored) imports only.
func resolveImport(dep string, files []string) string {
	dep = strings.Trim(dep, `"'`)
	if dep == "" {
		return ""
	}
	segment := dep
	if idx := strings.LastIndex(dep, "/"); idx >= 0 {
		segment = dep[idx+1:]
	}
	if segment == "" {
		return ""
	}
	for _, f := range files {
		dir := filepath.Dir(f)
		if filepath.Base(dir) == segment {
			return f
		}
	}
	return ""
}

var _ Strategy = (*Graph)(nil)
