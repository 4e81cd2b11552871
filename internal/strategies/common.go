package strategies

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// candidateID builds the conventional "<strategy>:<path>" candidate id.
func candidateID(strategy, path string) string {
	return strategy + ":" + path
}

// matchAny reports whether path matches any of the given doublestar glob
// patterns.
func matchAny(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, normalized); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, filepath.Base(normalized)); err == nil && ok {
			return true
		}
	}
	return false
}

// coverageBonus logarithmically rewards denser match counts, per the ranker's
// scoring contract.
func coverageBonus(matchCount int) float64 {
	if matchCount <= 0 {
		return 1
	}
	return 1 + math.Log(1+float64(matchCount))
}

// capCandidates truncates a candidate slice to at most n entries, n <= 0
// meaning unbounded.
func capCandidates(candidates []engine.SliceCandidate, n int) []engine.SliceCandidate {
	if n <= 0 || len(candidates) <= n {
		return candidates
	}
	return candidates[:n]
}

// capPaths truncates a path slice to at most n entries, n <= 0 meaning
// unbounded.
func capPaths(paths []string, n int) []string {
	if n <= 0 || len(paths) <= n {
		return paths
	}
	return paths[:n]
}

// buildAlternates attaches the mandatory reference alternate, plus an
// optional cheaper codemap alternate, to a candidate whose primary
// representation is full or snippet.
func buildAlternates(path, oneLiner string, estimate func(string) int, extra ...engine.Alternate) []engine.Alternate {
	alts := append([]engine.Alternate{}, extra...)
	alts = append(alts, engine.ReferenceAlternate(path, oneLiner, estimate))
	return alts
}

// renderCodemap produces a compact textual rendering of a CodeMap, used as
// SliceCandidate.Codemap content for codemap-representation candidates.
func renderCodemap(cm engine.CodeMap) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", cm.Path, cm.Language)
	if len(cm.Exports) > 0 {
		fmt.Fprintf(&b, "exports: %s\n", strings.Join(cm.Exports, ", "))
	}
	for _, fn := range cm.Functions {
		async := ""
		if fn.Async {
			async = " async"
		}
		fmt.Fprintf(&b, "func%s %s\n", async, fn.Signature)
	}
	for _, cl := range cm.Classes {
		fmt.Fprintf(&b, "type %s\n", cl.Name)
		if len(cl.Properties) > 0 {
			fmt.Fprintf(&b, "  fields: %s\n", strings.Join(cl.Properties, ", "))
		}
		if len(cl.Methods) > 0 {
			fmt.Fprintf(&b, "  methods: %s\n", strings.Join(cl.Methods, ", "))
		}
	}
	for _, t := range cm.Types {
		fmt.Fprintf(&b, "%s %s\n", t.Kind, t.Name)
	}
	for _, s := range cm.Sections {
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", s.Depth-1), s.Title)
	}
	if len(cm.Dependencies) > 0 {
		fmt.Fprintf(&b, "deps: %s\n", strings.Join(cm.Dependencies, ", "))
	}
	if cm.CodeBlocks != nil && cm.CodeBlocks.Count > 0 {
		fmt.Fprintf(&b, "code blocks: %d (%s)\n", cm.CodeBlocks.Count, strings.Join(cm.CodeBlocks.Languages, ", "))
	}
	return b.String()
}

// warnf formats a strategy warning the way every strategy in this package
// reports a recovered, non-fatal failure.
func warnf(strategyName, format string, args ...any) string {
	return fmt.Sprintf("%s: %s", strategyName, fmt.Sprintf(format, args...))
}

// configFilePatterns names build manifests, lockfiles, and environment
// examples considered "project configuration" by the config strategy.
var configFilePatterns = []string{
	"package.json", "tsconfig.json", "Cargo.toml", "go.mod", "go.sum",
	"Makefile", "Dockerfile", "docker-compose.yml", "docker-compose.yaml",
	"*.config.js", "*.config.ts", "pyproject.toml", "setup.py",
	"requirements.txt", ".env.example",
}

// docFilePatterns names files the docs strategy always includes regardless
// of keyword match.
var docFilePatterns = []string{
	"README*", "CHANGELOG*", "LICENSE*", "docs/**/*.md",
}

// skeletonFilePatterns names conventional entry points and structural
// files the skeleton strategy looks for.
var skeletonFilePatterns = []string{
	"main.go", "cmd/**/main.go", "index.js", "index.ts", "main.py",
	"app.py", "__init__.py", "go.mod", "**/router.go", "**/router.ts",
	"**/routes.go", "**/routes.ts",
}
