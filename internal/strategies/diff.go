package strategies

import (
	"context"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Diff emits recently changed files, as signalled by the inspector's VCS
// diff probe.
type Diff struct{}

func NewDiff() *Diff { return &Diff{} }

func (d *Diff) Name() string              { return "diff" }
func (d *Diff) DefaultWeight() float64    { return 0.4 }
func (d *Diff) DefaultBudgetCap() float64 { return 0.15 }

func (d *Diff) IsAvailable(ctx context.Context, sc *StrategyContext) bool {
	changed, err := sc.Inspector.Diff(ctx)
	return err == nil && len(changed) > 0
}

func (d *Diff) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	changed, err := sc.Inspector.Diff(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(d.Name(), "reading diff: %v", err))
		return result
	}
	changed = capPaths(changed, sc.Knobs.MaxItems)

	var implicated []string
	for _, path := range changed {
		content, err := sc.Inspector.ReadFile(ctx, path, inspector.ReadFileOptions{})
		if err != nil {
			result.Warnings = append(result.Warnings, warnf(d.Name(), "reading %s: %v", path, err))
			continue
		}
		text := string(content)
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(d.Name(), path),
			Path:           path,
			Strategy:       d.Name(),
			Representation: engine.RepresentationSnippet,
			Tokens:         sc.Estimate(text),
			Relevance:      0.5,
			Reason:         "recently changed file",
			Source:         "git diff",
			Content:        text,
			Alternates:     buildAlternates(path, "recently changed", sc.Estimate),
		})
		implicated = append(implicated, path)
	}

	sc.State.Append("diff", implicated...)
	return result
}

var _ Strategy = (*Diff)(nil)
