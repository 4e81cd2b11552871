package strategies

import (
	"context"
	"sort"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Complexity emits the largest code files by size, as codemaps, on the
// premise that size correlates with structural weight worth summarizing.
type Complexity struct{}

func NewComplexity() *Complexity { return &Complexity{} }

func (c *Complexity) Name() string              { return "complexity" }
func (c *Complexity) DefaultWeight() float64    { return 0.35 }
func (c *Complexity) DefaultBudgetCap() float64 { return 0.1 }

func (c *Complexity) IsAvailable(ctx context.Context, sc *StrategyContext) bool { return true }

type sizedFile struct {
	path string
	size int
}

func (c *Complexity) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	files, err := sc.Inspector.ListFiles(ctx, inspector.ListFilesOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(c.Name(), "listing files: %v", err))
		return result
	}

	var sized []sizedFile
	for _, f := range files {
		content, err := sc.Inspector.ReadFile(ctx, f, inspector.ReadFileOptions{})
		if err != nil {
			continue
		}
		sized = append(sized, sizedFile{path: f, size: len(content)})
	}
	sort.SliceStable(sized, func(i, j int) bool { return sized[i].size > sized[j].size })
	sized = sized[:min(len(sized), sc.Knobs.MaxItems)]

	var paths []string
	for _, s := range sized {
		paths = append(paths, s.path)
	}
	structures, err := sc.Inspector.Structure(ctx, paths, inspector.StructureOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(c.Name(), "extracting structure: %v", err))
		return result
	}
	byPath := make(map[string]engine.CodeMap, len(structures.CodeMaps))
	for _, cm := range structures.CodeMaps {
		byPath[cm.Path] = cm
	}

	for _, s := range sized {
		cm, ok := byPath[s.path]
		if !ok {
			continue
		}
		rendered := renderCodemap(cm)
		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(c.Name(), s.path),
			Path:           s.path,
			Strategy:       c.Name(),
			Representation: engine.RepresentationCodemap,
			Tokens:         sc.Estimate(rendered),
			Relevance:      0.35,
			Reason:         "large file by byte size",
			Source:         "file size scan",
			Codemap:        rendered,
			Alternates:     buildAlternates(s.path, "large file", sc.Estimate),
		})
	}

	return result
}

var _ Strategy = (*Complexity)(nil)
