package strategies

import (
	"context"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// forestDigestPath is the conventional location of a pre-rendered
// knowledge-graph digest, produced by an out-of-band indexing pass this
// engine does not itself run.
const forestDigestPath = ".contextslicer/forest.md"

// Forest surfaces a pre-rendered knowledge-graph digest of the repository,
// when one has been committed to the conventional location. It never
// computes the digest itself — that is an external collaborator's job.
type Forest struct{}

func NewForest() *Forest { return &Forest{} }

func (f *Forest) Name() string              { return "forest" }
func (f *Forest) DefaultWeight() float64    { return 0.3 }
func (f *Forest) DefaultBudgetCap() float64 { return 0.1 }

func (f *Forest) IsAvailable(ctx context.Context, sc *StrategyContext) bool {
	files, err := sc.Inspector.ListFiles(ctx, inspector.ListFilesOptions{Include: []string{forestDigestPath}})
	return err == nil && len(files) > 0
}

func (f *Forest) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	content, err := sc.Inspector.ReadFile(ctx, forestDigestPath, inspector.ReadFileOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(f.Name(), "reading digest: %v", err))
		return result
	}
	text := string(content)
	if text == "" {
		return result
	}

	tokens := sc.Estimate(text)
	if sc.Request.WantTreeSidecar {
		result.Sidecar = &engine.StrategySidecar{Name: "forest", Content: text, Tokens: tokens}
		return result
	}

	result.Candidates = append(result.Candidates, engine.SliceCandidate{
		ID:             candidateID(f.Name(), forestDigestPath),
		Path:           forestDigestPath,
		Strategy:       f.Name(),
		Representation: engine.RepresentationFull,
		Tokens:         tokens,
		Relevance:      0.3,
		Reason:         "pre-rendered knowledge-graph digest",
		Source:         "forest digest",
		Content:        text,
		Alternates:     buildAlternates(forestDigestPath, "knowledge-graph digest", sc.Estimate),
	})
	return result
}

var _ Strategy = (*Forest)(nil)
