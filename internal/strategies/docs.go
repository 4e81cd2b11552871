package strategies

import (
	"context"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Docs emits documentation files: core docs (README, CHANGELOG, LICENSE,
// docs/**) always, plus any additional docs hit by keyword search.
type Docs struct{}

func NewDocs() *Docs { return &Docs{} }

func (d *Docs) Name() string              { return "docs" }
func (d *Docs) DefaultWeight() float64    { return 0.55 }
func (d *Docs) DefaultBudgetCap() float64 { return 0.2 }

func (d *Docs) IsAvailable(ctx context.Context, sc *StrategyContext) bool { return true }

func (d *Docs) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	files, err := sc.Inspector.ListFiles(ctx, inspector.ListFilesOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(d.Name(), "listing files: %v", err))
		return result
	}

	seen := make(map[string]bool)
	var docs []string
	for _, f := range files {
		if matchAny(f, docFilePatterns) {
			docs = append(docs, f)
			seen[f] = true
		}
	}

	for _, kw := range sc.Keywords {
		sr, err := sc.Inspector.Search(ctx, kw, inspector.SearchOptions{
			Extensions:   []string{"md", "markdown", "rst", "txt"},
			ContextLines: sc.Knobs.ContextLines,
			MaxResults:   sc.Knobs.MaxHitsPerFile,
		})
		if err != nil {
			result.Warnings = append(result.Warnings, warnf(d.Name(), "searching docs for %q: %v", kw, err))
			continue
		}
		for _, m := range sr.Matches {
			if !seen[m.Path] {
				seen[m.Path] = true
				docs = append(docs, m.Path)
			}
		}
	}
	docs = capPaths(docs, sc.Knobs.MaxItems)

	for _, path := range docs {
		content, err := sc.Inspector.ReadFile(ctx, path, inspector.ReadFileOptions{})
		if err != nil {
			result.Warnings = append(result.Warnings, warnf(d.Name(), "reading %s: %v", path, err))
			continue
		}
		text := string(content)
		representation := engine.RepresentationFull
		tokens := sc.Estimate(text)
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(d.Name(), path),
			Path:           path,
			Strategy:       d.Name(),
			Representation: representation,
			Tokens:         tokens,
			Relevance:      0.55,
			Reason:         "project documentation",
			Source:         "docs scan",
			Content:        text,
			Alternates:     buildAlternates(path, "documentation", sc.Estimate),
		})
	}

	return result
}

var _ Strategy = (*Docs)(nil)
