package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// MarkdownFormatter renders a ContextResult as the bit-exact Markdown
// shape: H1 title, summary bullets, an optional strategy table, prompt,
// history, directory structure, and one H3 section per file.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(result engine.ContextResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Context: %s\n\n", result.Task)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Files: %d\n", len(result.Files))
	fmt.Fprintf(&b, "- Tokens: %d\n", result.TotalTokens)
	fmt.Fprintf(&b, "- Budget Usage: %s%%\n\n", budgetUsage(result.TotalTokens, result.Budget))

	if len(result.StrategyTotals) > 0 {
		b.WriteString("| Strategy | Files | Tokens |\n")
		b.WriteString("|---|---|---|\n")
		for _, name := range sortedStrategyNames(result.StrategyTotals) {
			stats := result.StrategyTotals[name]
			fmt.Fprintf(&b, "| %s | %d | %d |\n", name, stats.Count, stats.Tokens)
		}
		b.WriteString("\n")
	}

	if result.Prompt != "" {
		fmt.Fprintf(&b, "## Prompt\n\n%s\n\n", result.Prompt)
	}
	if result.History != "" {
		fmt.Fprintf(&b, "## History\n\n%s\n\n", result.History)
	}
	if result.Tree != "" {
		fmt.Fprintf(&b, "## Directory Structure\n\n```\n%s\n```\n\n", result.Tree)
	}

	b.WriteString("## Files\n\n")
	for _, file := range result.Files {
		fmt.Fprintf(&b, "### %s\n\n", file.Path)
		fmt.Fprintf(&b, "**Tokens**: %d | **Mode**: %s | **Strategy**: %s\n\n", file.Tokens, file.Mode, file.Strategy)

		body := file.Content
		if body == "" {
			body = file.Codemap
		}
		lang := languageForPath(file.Path)
		fmt.Fprintf(&b, "```%s\n%s\n```\n\n", lang, body)
	}

	if result.Plan != "" {
		fmt.Fprintf(&b, "## Implementation Plan\n\n%s\n", result.Plan)
	}

	return b.String(), nil
}

var extensionLanguages = map[string]string{
	".go": "go", ".py": "python", ".js": "javascript", ".jsx": "jsx",
	".ts": "typescript", ".tsx": "tsx", ".rs": "rust", ".java": "java",
	".rb": "ruby", ".sh": "bash", ".md": "markdown", ".json": "json",
	".yaml": "yaml", ".yml": "yaml", ".toml": "toml", ".sql": "sql",
}

func languageForPath(path string) string {
	if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return ""
}
