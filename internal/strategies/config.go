package strategies

import (
	"context"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Config emits project configuration files: build manifests, lockfiles,
// and environment examples.
type Config struct{}

func NewConfig() *Config { return &Config{} }

func (c *Config) Name() string              { return "config" }
func (c *Config) DefaultWeight() float64    { return 0.5 }
func (c *Config) DefaultBudgetCap() float64 { return 0.15 }

func (c *Config) IsAvailable(ctx context.Context, sc *StrategyContext) bool { return true }

func (c *Config) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	files, err := sc.Inspector.ListFiles(ctx, inspector.ListFilesOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(c.Name(), "listing files: %v", err))
		return result
	}

	var matched []string
	for _, f := range files {
		if matchAny(f, configFilePatterns) {
			matched = append(matched, f)
		}
	}
	matched = capPaths(matched, sc.Knobs.MaxItems)

	for _, path := range matched {
		content, err := sc.Inspector.ReadFile(ctx, path, inspector.ReadFileOptions{})
		if err != nil {
			result.Warnings = append(result.Warnings, warnf(c.Name(), "reading %s: %v", path, err))
			continue
		}
		text := string(content)
		representation := engine.RepresentationFull
		tokens := sc.Estimate(text)
		if sc.Knobs.ContextLines > 0 && tokens > sc.Knobs.ContextLines*200 {
			representation = engine.RepresentationSnippet
		}
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(c.Name(), path),
			Path:           path,
			Strategy:       c.Name(),
			Representation: representation,
			Tokens:         tokens,
			Relevance:      0.55,
			Reason:         "project configuration file",
			Source:         "config scan",
			Content:        text,
			Alternates:     buildAlternates(path, "project configuration", sc.Estimate),
		})
	}

	sc.State.Append("config", matched...)
	return result
}

var _ Strategy = (*Config)(nil)
