package strategies

import (
	"context"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Symbols emits codemaps for files already implicated by earlier strategies
// (matchedFiles).
type Symbols struct{}

func NewSymbols() *Symbols { return &Symbols{} }

func (s *Symbols) Name() string              { return "symbols" }
func (s *Symbols) DefaultWeight() float64    { return 0.75 }
func (s *Symbols) DefaultBudgetCap() float64 { return 0.25 }

func (s *Symbols) IsAvailable(ctx context.Context, sc *StrategyContext) bool {
	return len(sc.State.Snapshot()) > 0
}

func (s *Symbols) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	paths := capPaths(sc.State.Snapshot(), sc.Knobs.MaxItems)
	if len(paths) == 0 {
		return result
	}

	structures, err := sc.Inspector.Structure(ctx, paths, inspector.StructureOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(s.Name(), "extracting structure: %v", err))
		return result
	}

	for _, cm := range structures.CodeMaps {
		rendered := renderCodemap(cm)
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(s.Name(), cm.Path),
			Path:           cm.Path,
			Strategy:       s.Name(),
			Representation: engine.RepresentationCodemap,
			Tokens:         sc.Estimate(rendered),
			Relevance:      0.65,
			Reason:         "structural summary of a matched file",
			Source:         "matchedFiles",
			Codemap:        rendered,
			Alternates:     buildAlternates(cm.Path, "matched file", sc.Estimate),
		})
	}
	for _, path := range structures.FilesWithoutCodemap {
		result.Warnings = append(result.Warnings, warnf(s.Name(), "no codemap extractor for %s", path))
	}

	return result
}

var _ Strategy = (*Symbols)(nil)
