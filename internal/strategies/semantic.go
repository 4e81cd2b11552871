package strategies

import (
	"context"

	"github.com/contextslicer/contextslicer/internal/embedindex"
	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Semantic emits the embedding index's nearest neighbors of the task text
// (of the first matched file's path when the task is empty), excluding files
// already in matchedFiles. It does not query by the content of matchedFiles.
// It is only available when sc.Backend carries a populated embedindex.Index
// and matchedFiles is non-empty.
type Semantic struct{}

func NewSemantic() *Semantic { return &Semantic{} }

func (s *Semantic) Name() string              { return "semantic" }
func (s *Semantic) DefaultWeight() float64    { return 0.5 }
func (s *Semantic) DefaultBudgetCap() float64 { return 0.15 }

func (s *Semantic) IsAvailable(ctx context.Context, sc *StrategyContext) bool {
	idx, ok := sc.Backend.(embedindex.Index)
	return ok && idx != nil && idx.Size() > 0 && len(sc.State.Snapshot()) > 0
}

func (s *Semantic) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	idx, ok := sc.Backend.(embedindex.Index)
	if !ok || idx == nil {
		result.Warnings = append(result.Warnings, warnf(s.Name(), "no embedding index configured"))
		return result
	}

	seeds := sc.State.Snapshot()
	seen := make(map[string]bool, len(seeds))
	for _, p := range seeds {
		seen[p] = true
	}

	var neighborPaths []string
	queryText := sc.Request.Task
	if queryText == "" && len(seeds) > 0 {
		queryText = seeds[0]
	}

	neighbors, err := idx.Query(ctx, queryText, sc.Knobs.MaxItems, seeds)
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(s.Name(), "querying embedding index: %v", err))
		return result
	}
	for _, n := range neighbors {
		if seen[n.Path] {
			continue
		}
		seen[n.Path] = true
		neighborPaths = append(neighborPaths, n.Path)
	}
	if len(neighborPaths) == 0 {
		return result
	}

	structures, err := sc.Inspector.Structure(ctx, neighborPaths, inspector.StructureOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(s.Name(), "extracting structure: %v", err))
		return result
	}

	similarityByPath := make(map[string]float64, len(neighbors))
	for _, n := range neighbors {
		similarityByPath[n.Path] = n.Similarity
	}

	for _, cm := range structures.CodeMaps {
		rendered := renderCodemap(cm)
		relevance := similarityByPath[cm.Path]
		if relevance <= 0 {
			relevance = 0.4
		}
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(s.Name(), cm.Path),
			Path:           cm.Path,
			Strategy:       s.Name(),
			Representation: engine.RepresentationCodemap,
			Tokens:         sc.Estimate(rendered),
			Relevance:      relevance,
			Reason:         "embedding-nearest neighbor of a matched file",
			Source:         "embedding index",
			Codemap:        rendered,
			Alternates:     buildAlternates(cm.Path, "semantic neighbor", sc.Estimate),
		})
	}

	return result
}

var _ Strategy = (*Semantic)(nil)
