package strategies

import (
	"context"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Skeleton finds conventional entry points and structural files (index/
// main/mod/router) and emits them as codemaps.
type Skeleton struct{}

func NewSkeleton() *Skeleton { return &Skeleton{} }

func (s *Skeleton) Name() string              { return "skeleton" }
func (s *Skeleton) DefaultWeight() float64    { return 0.6 }
func (s *Skeleton) DefaultBudgetCap() float64 { return 0.15 }

func (s *Skeleton) IsAvailable(ctx context.Context, sc *StrategyContext) bool { return true }

func (s *Skeleton) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	files, err := sc.Inspector.ListFiles(ctx, inspector.ListFilesOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(s.Name(), "listing files: %v", err))
		return result
	}

	var entryPoints []string
	for _, f := range files {
		if matchAny(f, skeletonFilePatterns) {
			entryPoints = append(entryPoints, f)
		}
	}
	entryPoints = capPaths(entryPoints, sc.Knobs.MaxItems)

	structures, err := sc.Inspector.Structure(ctx, entryPoints, inspector.StructureOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(s.Name(), "extracting structure: %v", err))
		return result
	}

	byPath := make(map[string]engine.CodeMap, len(structures.CodeMaps))
	for _, cm := range structures.CodeMaps {
		byPath[cm.Path] = cm
	}

	var implicated []string
	for _, path := range entryPoints {
		cm, ok := byPath[path]
		var rendered string
		if ok {
			rendered = renderCodemap(cm)
		} else {
			rendered = path + " (entry point)"
		}
		tokens := sc.Estimate(rendered)
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(s.Name(), path),
			Path:           path,
			Strategy:       s.Name(),
			Representation: engine.RepresentationCodemap,
			Tokens:         tokens,
			Relevance:      0.7,
			Reason:         "entry point / structural file",
			Source:         "skeleton scan",
			Codemap:        rendered,
			Alternates:     buildAlternates(path, "entry point", sc.Estimate),
		})
		implicated = append(implicated, path)
	}

	sc.State.Append("skeleton", implicated...)
	return result
}

var _ Strategy = (*Skeleton)(nil)
