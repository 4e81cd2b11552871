package strategies

import (
	"context"
	"regexp"
	"strings"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// explicitPathPattern matches path-shaped tokens in free text: a run of name
// and path characters ending in a dot and an extension. A token with path
// separators but no extension does not match.
var explicitPathPattern = regexp.MustCompile(`[A-Za-z0-9_.\-/]+\.[A-Za-z0-9]+`)

// Explicit resolves paths mentioned verbatim in the task text against the
// repository's file listing.
type Explicit struct{}

func NewExplicit() *Explicit { return &Explicit{} }

func (e *Explicit) Name() string              { return "explicit" }
func (e *Explicit) DefaultWeight() float64    { return 1.0 }
func (e *Explicit) DefaultBudgetCap() float64 { return 0 }

func (e *Explicit) IsAvailable(ctx context.Context, sc *StrategyContext) bool {
	return strings.TrimSpace(sc.Request.Task) != ""
}

func (e *Explicit) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	mentioned := explicitPathPattern.FindAllString(sc.Request.Task, -1)
	if len(mentioned) == 0 {
		return result
	}

	files, err := sc.Inspector.ListFiles(ctx, inspector.ListFilesOptions{})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(e.Name(), "listing files: %v", err))
		return result
	}
	byBase := make(map[string][]string, len(files))
	bySuffix := files
	for _, f := range files {
		parts := strings.Split(f, "/")
		base := parts[len(parts)-1]
		byBase[base] = append(byBase[base], f)
	}

	seen := make(map[string]bool)
	var matched []string
	for _, token := range mentioned {
		token = strings.Trim(token, "`'\",.()[]{}")
		for _, candidatePath := range byBase[token] {
			if !seen[candidatePath] {
				seen[candidatePath] = true
				matched = append(matched, candidatePath)
			}
		}
		for _, f := range bySuffix {
			if strings.HasSuffix(f, "/"+token) || f == token {
				if !seen[f] {
					seen[f] = true
					matched = append(matched, f)
				}
			}
		}
	}

	for _, path := range matched {
		content, err := sc.Inspector.ReadFile(ctx, path, inspector.ReadFileOptions{})
		if err != nil {
			result.Warnings = append(result.Warnings, warnf(e.Name(), "reading %s: %v", path, err))
			continue
		}
		text := string(content)
		tokens := sc.Estimate(text)

		var codemapAlt []engine.Alternate
		if sr, err := sc.Inspector.Structure(ctx, []string{path}, inspector.StructureOptions{}); err == nil && len(sr.CodeMaps) > 0 {
			cm := renderCodemap(sr.CodeMaps[0])
			codemapAlt = append(codemapAlt, engine.Alternate{
				Representation: engine.RepresentationCodemap,
				Tokens:         sc.Estimate(cm),
				Codemap:        cm,
			})
		}

		result.Candidates = append(result.Candidates, engine.SliceCandidate{
			ID:             candidateID(e.Name(), path),
			Path:           path,
			Strategy:       e.Name(),
			Representation: engine.RepresentationFull,
			Tokens:         tokens,
			Relevance:      1.0,
			Reason:         "mentioned explicitly in task",
			Source:         "task text",
			Content:        text,
			Alternates:     buildAlternates(path, "mentioned in task", sc.Estimate, codemapAlt...),
		})
	}

	sc.State.Append("explicit", matched...)
	return result
}

var _ Strategy = (*Explicit)(nil)
