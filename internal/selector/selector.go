// Package selector implements the Ranker and Selector: deterministic
// ordering of a SlicePlan's candidates and budget-constrained selection
// into a SliceResult.
package selector

import (
	"math"
	"sort"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// strategyPriority is the fixed tie-break table, higher value sorts first.
var strategyPriority = map[string]int{
	"explicit":   12,
	"keyword":    11,
	"symbols":    10,
	"ast":        9,
	"skeleton":   8,
	"docs":       7,
	"graph":      6,
	"semantic":   5,
	"complexity": 4,
	"config":     3,
	"diff":       2,
	"forest":     1,
}

// Rank orders plan.Candidates deterministically: score descending, then
// strategy priority, then per-strategy emission order, then path
// lexicographically. It does not mutate plan; it returns a new, scored
// slice.
func Rank(plan engine.SlicePlan) []engine.SliceCandidate {
	ranked := make([]engine.SliceCandidate, len(plan.Candidates))
	copy(ranked, plan.Candidates)

	for i := range ranked {
		ranked[i].Score = score(ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if pa, pb := strategyPriority[a.Strategy], strategyPriority[b.Strategy]; pa != pb {
			return pa > pb
		}
		if a.EmissionIndex != b.EmissionIndex {
			return a.EmissionIndex < b.EmissionIndex
		}
		return a.Path < b.Path
	})

	return ranked
}

func score(c engine.SliceCandidate) float64 {
	weight := strategyWeight(c.Strategy)
	bonus := 1.0
	if c.MatchCount > 0 {
		bonus = 1 + math.Log(1+float64(c.MatchCount))
	}
	return weight * c.Relevance * bonus
}

// strategyWeight returns the DefaultWeight each builtin strategy declares.
// Kept as a local table (rather than importing internal/strategies) to
// avoid a selector → strategies dependency the planner already owns.
var strategyWeightTable = map[string]float64{
	"explicit":   1.0,
	"keyword":    0.9,
	"symbols":    0.75,
	"ast":        0.7,
	"skeleton":   0.6,
	"docs":       0.55,
	"config":     0.5,
	"semantic":   0.5,
	"graph":      0.45,
	"diff":       0.4,
	"complexity": 0.35,
	"forest":     0.3,
	"inventory":  0.3,
}

func strategyWeight(strategyName string) float64 {
	if w, ok := strategyWeightTable[strategyName]; ok {
		return w
	}
	return 0.5
}

// selectionState tracks the selector's running per-strategy token spend and
// admitted paths across the Select walk.
type selectionState struct {
	budget          int
	spent           int
	admittedPaths   map[string]bool
	strategyTokens  map[string]int
	strategyCapFrac map[string]float64
}

// Select walks the ranked candidate list and fills the budget under global
// and per-strategy caps, producing a SliceResult. It never fails: an empty
// selection with a warning is a valid result.
func Select(plan engine.SlicePlan, budget int) engine.SliceResult {
	ranked := Rank(plan)

	state := &selectionState{
		budget:          budget,
		admittedPaths:   make(map[string]bool),
		strategyTokens:  make(map[string]int),
		strategyCapFrac: defaultCapTable(plan.Request),
	}

	var selected []engine.SliceCandidate
	var warnings []string

	if plan.Request.WantTreeSidecar && plan.TreeSidecar != nil {
		if plan.TreeSidecar.Tokens > budget/4 {
			warnings = append(warnings, "tree sidecar exceeds 25% of budget, skipped")
		} else {
			state.spent += plan.TreeSidecar.Tokens
		}
	}

	for _, c := range ranked {
		if state.budget-state.spent < 32 {
			break
		}
		if state.admittedPaths[c.Path] {
			warnings = append(warnings, "discarded duplicate candidate for "+c.Path+" from strategy "+c.Strategy)
			continue
		}

		admitted, tokens, rep, content, codemap, ok := fitBudget(c, state)
		if !ok {
			continue
		}

		admitted.Tokens = tokens
		admitted.Representation = rep
		admitted.Content = content
		admitted.Codemap = codemap

		state.admittedPaths[c.Path] = true
		state.spent += tokens
		state.strategyTokens[c.Strategy] += tokens

		selected = append(selected, admitted)
	}

	if len(selected) == 0 {
		warnings = append(warnings, "selection produced zero candidates")
	}

	return engine.SliceResult{
		Selected:    selected,
		TotalTokens: state.spent,
		Budget:      budget,
		Warnings:    warnings,
	}
}

// fitBudget attempts the candidate's declared representation first, then
// walks its alternates in order (always ending with the reference
// alternate), returning the first that fits both the remaining budget and
// the strategy's soft cap.
func fitBudget(c engine.SliceCandidate, state *selectionState) (engine.SliceCandidate, int, engine.Representation, string, string, bool) {
	type option struct {
		rep     engine.Representation
		tokens  int
		content string
		codemap string
	}

	options := []option{{rep: c.Representation, tokens: c.Tokens, content: c.Content, codemap: c.Codemap}}
	for _, alt := range c.Alternates {
		options = append(options, option{rep: alt.Representation, tokens: alt.Tokens, content: alt.Content, codemap: alt.Codemap})
	}

	remaining := state.budget - state.spent
	capFrac := state.strategyCapFrac[c.Strategy]

	for _, opt := range options {
		if opt.tokens > remaining {
			continue
		}
		if capFrac > 0 {
			capTokens := int(capFrac * float64(state.budget))
			if capTokens < 256 {
				capTokens = 256
			}
			if state.strategyTokens[c.Strategy]+opt.tokens > capTokens && otherStrategyDemand(state) {
				continue
			}
		}
		return c, opt.tokens, opt.rep, opt.content, opt.codemap, true
	}
	return c, 0, "", "", "", false
}

// otherStrategyDemand reports whether capping this strategy's share still
// leaves room for other strategies to use the budget; the cap is "soft" —
// enforced only while another strategy might still want its share.
func otherStrategyDemand(state *selectionState) bool {
	return state.budget-state.spent > 256
}

func defaultCapTable(req engine.SliceRequest) map[string]float64 {
	caps := map[string]float64{
		"keyword":    0.35,
		"symbols":    0.25,
		"ast":        0.2,
		"docs":       0.2,
		"skeleton":   0.15,
		"config":     0.15,
		"diff":       0.15,
		"graph":      0.15,
		"semantic":   0.15,
		"complexity": 0.1,
		"forest":     0.1,
	}
	for name, strategyCap := range req.StrategyCaps {
		if strategyCap.MaxTokens > 0 && req.BudgetTokens > 0 {
			caps[name] = float64(strategyCap.MaxTokens) / float64(req.BudgetTokens)
		}
	}
	return caps
}
