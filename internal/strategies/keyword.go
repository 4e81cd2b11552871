package strategies

import (
	"context"
	"sort"
	"strings"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Keyword searches the repository for derived keywords and emits snippets
// around the matching lines, the top-scoring files first.
type Keyword struct{}

func NewKeyword() *Keyword { return &Keyword{} }

func (k *Keyword) Name() string              { return "keyword" }
func (k *Keyword) DefaultWeight() float64    { return 0.9 }
func (k *Keyword) DefaultBudgetCap() float64 { return 0.35 }

func (k *Keyword) IsAvailable(ctx context.Context, sc *StrategyContext) bool {
	return len(sc.Keywords) > 0
}

type keywordHit struct {
	path       string
	matchCount int
	snippet    string
}

func (k *Keyword) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	hits := make(map[string]*keywordHit)
	var order []string

	for _, kw := range sc.Keywords {
		sr, err := sc.Inspector.Search(ctx, kw, inspector.SearchOptions{
			ContextLines: sc.Knobs.ContextLines,
			MaxResults:   sc.Knobs.MaxHitsPerFile * 50,
		})
		if err != nil {
			result.Warnings = append(result.Warnings, warnf(k.Name(), "searching %q: %v", kw, err))
			continue
		}

		perFile := make(map[string]int)
		for _, m := range sr.Matches {
			if perFile[m.Path] >= sc.Knobs.MaxHitsPerFile {
				continue
			}
			perFile[m.Path]++

			hit, ok := hits[m.Path]
			if !ok {
				hit = &keywordHit{path: m.Path}
				hits[m.Path] = hit
				order = append(order, m.Path)
			}
			hit.matchCount++
			lines := m.Context
			if len(lines) == 0 {
				lines = []string{m.Content}
			}
			if hit.snippet != "" {
				hit.snippet += "\n...\n"
			}
			hit.snippet += strings.Join(lines, "\n")
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return hits[order[i]].matchCount > hits[order[j]].matchCount
	})
	order = capPaths(order, sc.Knobs.MaxItems)

	var implicated []string
	for _, path := range order {
		hit := hits[path]
		tokens := sc.Estimate(hit.snippet)
		relevance := coverageBonus(hit.matchCount) / coverageBonus(1)
		if relevance > 1 {
			relevance = 1
		}
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(k.Name(), path),
			Path:           path,
			Strategy:       k.Name(),
			Representation: engine.RepresentationSnippet,
			Tokens:         tokens,
			Relevance:      relevance,
			Reason:         "matches derived keywords",
			Source:         "keyword search",
			Content:        hit.snippet,
			MatchCount:     hit.matchCount,
			Alternates:     buildAlternates(path, "keyword match", sc.Estimate),
		})
		implicated = append(implicated, path)
	}

	sc.State.Append("keyword", implicated...)
	return result
}

var _ Strategy = (*Keyword)(nil)
