// Package assembler materializes a SliceResult's selected candidates into a
// ContextResult: computing content hashes, per-strategy statistics from the
// post-selection totals, and wiring in any admitted sidecars.
package assembler

import (
	"github.com/zeebo/xxh3"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/selector"
)

// Assemble runs Select against plan and budget, then materializes the
// selection into a SliceResult whose ContextResult is ready for
// formatting: content hashed with XXH3, strategy stats recomputed from the
// actual post-selection totals, sidecars wired in only when admitted.
func Assemble(plan engine.SlicePlan, budget int) engine.SliceResult {
	result := selector.Select(plan, budget)
	result.Result = buildContextResult(result, plan)
	return result
}

// buildContextResult converts a SliceResult into a ContextResult, hashing
// each materialized file's content with XXH3 for downstream change
// detection.
func buildContextResult(result engine.SliceResult, plan engine.SlicePlan) engine.ContextResult {
	files := make([]engine.ContextFile, 0, len(result.Selected))
	strategyTotals := make(map[string]engine.StrategyStats)

	for _, c := range result.Selected {
		body := c.Content
		if body == "" {
			body = c.Codemap
		}
		var hash uint64
		if body != "" {
			hash = xxh3.HashString(body)
		}

		files = append(files, engine.ContextFile{
			Path:        c.Path,
			Tokens:      c.Tokens,
			Mode:        c.Representation,
			Content:     c.Content,
			Codemap:     c.Codemap,
			Strategy:    c.Strategy,
			Reason:      c.Reason,
			Relevance:   c.Relevance,
			ContentHash: hash,
		})

		stats := strategyTotals[c.Strategy]
		stats.Count++
		stats.Tokens += c.Tokens
		strategyTotals[c.Strategy] = stats
	}

	var tree string
	if plan.Request.WantTreeSidecar && plan.TreeSidecar != nil && plan.TreeSidecar.Tokens <= result.Budget/4 {
		tree = plan.TreeSidecar.Content
	}

	return engine.ContextResult{
		Task:           plan.Request.Task,
		Files:          files,
		TotalTokens:    result.TotalTokens,
		Budget:         result.Budget,
		StrategyTotals: strategyTotals,
		Tree:           tree,
	}
}
