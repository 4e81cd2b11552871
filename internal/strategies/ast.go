package strategies

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// parseableExtensions are the languages codestructure.Extractor actually
// parses with tree-sitter (Markdown is handled by the docs strategy, not
// ast).
var parseableExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true,
	".mjs": true, ".cjs": true, ".ts": true, ".tsx": true,
}

// AST emits AST-derived codemaps for keyword-hit files in parseable
// languages, the deeper structural counterpart to Symbols. It scopes to
// keyword's own implicated paths rather than the whole matched-file set, so
// it doesn't just re-derive Symbols' broader output under a different name.
type AST struct{}

func NewAST() *AST { return &AST{} }

func (a *AST) Name() string              { return "ast" }
func (a *AST) DefaultWeight() float64    { return 0.7 }
func (a *AST) DefaultBudgetCap() float64 { return 0.2 }

func (a *AST) IsAvailable(ctx context.Context, sc *StrategyContext) bool {
	return len(sc.State.SnapshotFrom("keyword")) > 0
}

func (a *AST) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	var parseable []string
	for _, path := range sc.State.SnapshotFrom("keyword") {
		if parseableExtensions[strings.ToLower(filepath.Ext(path))] {
			parseable = append(parseable, path)
		}
	}
	parseable = capPaths(parseable, sc.Knobs.MaxItems)
	if len(parseable) == 0 {
		return result
	}

	structures, err := sc.Inspector.Structure(ctx, parseable, inspector.StructureOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(a.Name(), "extracting structure: %v", err))
		return result
	}

	for _, cm := range structures.CodeMaps {
		rendered := renderCodemap(cm)
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(a.Name(), cm.Path),
			Path:           cm.Path,
			Strategy:       a.Name(),
			Representation: engine.RepresentationCodemap,
			Tokens:         sc.Estimate(rendered),
			Relevance:      0.6,
			Reason:         "AST-derived structure of a keyword-matched file",
			Source:         "tree-sitter",
			Codemap:        rendered,
			Alternates:     buildAlternates(cm.Path, "AST summary", sc.Estimate),
		})
	}

	return result
}

var _ Strategy = (*AST)(nil)
