package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// XMLFormatter renders a ContextResult as the bit-exact XML shape: UTF-8
// declaration, a root <ivo_context> element, and fixed child ordering.
type XMLFormatter struct{}

func (f *XMLFormatter) Format(result engine.ContextResult) (string, error) {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<ivo_context version="1.0" generated="%s">`+"\n", time.Now().UTC().Format(time.RFC3339))

	if result.Task != "" {
		writeCDATAElement(&b, "task", result.Task, 1)
	}

	writeSummary(&b, result)
	writeContextSummary(&b, result)

	if result.Prompt != "" {
		writeCDATAElement(&b, "prompt", result.Prompt, 1)
	}
	if result.History != "" {
		writeCDATAElement(&b, "history", result.History, 1)
	}
	if result.Tree != "" {
		writeCDATAElement(&b, "directory_structure", result.Tree, 1)
	}

	writeFiles(&b, result.Files)

	if result.Plan != "" {
		writeCDATAElement(&b, "plan", result.Plan, 1)
	}

	b.WriteString("</ivo_context>\n")
	return b.String(), nil
}

func writeSummary(b *strings.Builder, result engine.ContextResult) {
	b.WriteString("  <summary>\n")
	fmt.Fprintf(b, "    <total_files>%d</total_files>\n", len(result.Files))
	fmt.Fprintf(b, "    <total_tokens>%d</total_tokens>\n", result.TotalTokens)
	fmt.Fprintf(b, "    <budget>%d</budget>\n", result.Budget)
	fmt.Fprintf(b, "    <budget_usage>%s%%</budget_usage>\n", budgetUsage(result.TotalTokens, result.Budget))
	b.WriteString("  </summary>\n")
}

func writeContextSummary(b *strings.Builder, result engine.ContextResult) {
	b.WriteString("  <context_summary>\n")
	b.WriteString("    <strategies_used>\n")
	for _, name := range sortedStrategyNames(result.StrategyTotals) {
		stats := result.StrategyTotals[name]
		fmt.Fprintf(b, "      <strategy name=\"%s\" files=\"%d\" tokens=\"%d\" />\n",
			escapeAttr(name), stats.Count, stats.Tokens)
	}
	b.WriteString("    </strategies_used>\n")
	b.WriteString("  </context_summary>\n")
}

func writeFiles(b *strings.Builder, files []engine.ContextFile) {
	b.WriteString("  <files>\n")
	for _, file := range files {
		b.WriteString("    <file")
		fmt.Fprintf(b, " path=\"%s\"", escapeAttr(file.Path))
		fmt.Fprintf(b, " tokens=\"%d\"", file.Tokens)
		fmt.Fprintf(b, " mode=\"%s\"", escapeAttr(string(file.Mode)))
		if file.Relevance != 0 {
			fmt.Fprintf(b, " relevance=\"%s\"", strconv.FormatFloat(file.Relevance, 'f', -1, 64))
		}
		if file.Strategy != "" {
			fmt.Fprintf(b, " strategy=\"%s\"", escapeAttr(file.Strategy))
		}
		if file.Reason != "" {
			fmt.Fprintf(b, " reason=\"%s\"", escapeAttr(file.Reason))
		}

		if file.Content == "" && file.Codemap == "" {
			b.WriteString(" />\n")
			continue
		}
		b.WriteString(">\n")
		if file.Content != "" {
			writeCDATAElement(b, "content", file.Content, 3)
		}
		if file.Codemap != "" {
			writeCDATAElement(b, "codemap", file.Codemap, 3)
		}
		b.WriteString("    </file>\n")
	}
	b.WriteString("  </files>\n")
}

// writeCDATAElement writes a single element whose body is wrapped in
// CDATA, indented by depth levels of two spaces.
func writeCDATAElement(b *strings.Builder, name, content string, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s<%s><![CDATA[%s]]></%s>\n", indent, name, escapeCDATA(content), name)
}

// escapeCDATA splits any internal "]]>" sequence so it cannot terminate the
// CDATA section early: "]]>" becomes "]]]]><![CDATA[>".
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

// escapeAttr applies the five standard XML entity escapes for use inside a
// double-quoted attribute value.
func escapeAttr(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}

func budgetUsage(tokens, budget int) string {
	if budget <= 0 {
		return "0.0"
	}
	usage := float64(tokens*100) / float64(budget)
	return strconv.FormatFloat(usage, 'f', 1, 64)
}

func sortedStrategyNames(totals map[string]engine.StrategyStats) []string {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
