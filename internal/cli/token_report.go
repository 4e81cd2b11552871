// Package cli implements the Cobra command hierarchy for the contextslicer
// CLI tool. This file formats a SliceResult as a human-readable report for
// the `preview` subcommand.
package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// PrintSelectionReport writes a summary of a SliceResult's selected
// candidates, grouped by strategy, along with total token usage against the
// configured budget.
func PrintSelectionReport(w io.Writer, result engine.SliceResult) {
	fmt.Fprintf(w, "selected %d candidate(s), %d/%d tokens\n\n", len(result.Selected), result.TotalTokens, result.Budget)

	byStrategy := make(map[string]int)
	tokensByStrategy := make(map[string]int)
	for _, c := range result.Selected {
		byStrategy[c.Strategy]++
		tokensByStrategy[c.Strategy] += c.Tokens
	}

	names := make([]string, 0, len(byStrategy))
	for name := range byStrategy {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %4d candidate(s)  %8d tokens\n", name, byStrategy[name], tokensByStrategy[name])
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

// PrintTopCandidates writes the n largest selected candidates by token
// count. n <= 0 shows every candidate.
func PrintTopCandidates(w io.Writer, candidates []engine.SliceCandidate, n int) {
	sorted := append([]engine.SliceCandidate(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tokens > sorted[j].Tokens })

	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}

	fmt.Fprintln(w, "\ntop candidates by token count:")
	for _, c := range sorted {
		fmt.Fprintf(w, "  %8d tokens  %-10s %-10s %s\n", c.Tokens, c.Strategy, c.Representation, c.Path)
	}
}
