// Package strategies implements the builtin context-slicing strategies and
// the contract they satisfy. Strategies are stateless producers: given a
// StrategyContext they emit SliceCandidates, at most one StrategySidecar,
// and any number of warnings. They never fail the plan — errors become
// warnings in the caller.
package strategies

import (
	"context"
	"sync"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/estimator"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Strategy is the plugin contract every context-gathering producer
// implements, whether builtin or loaded from a WASM module.
type Strategy interface {
	// Name is the strategy's unique identifier.
	Name() string

	// DefaultWeight is the base relevance multiplier applied to every
	// candidate this strategy emits, in (0, 1].
	DefaultWeight() float64

	// DefaultBudgetCap is an optional soft cap as a fraction of total
	// budget; zero means uncapped.
	DefaultBudgetCap() float64

	// IsAvailable is a cheap pre-check run before Execute.
	IsAvailable(ctx context.Context, sc *StrategyContext) bool

	// Execute produces this strategy's contribution to the plan.
	Execute(ctx context.Context, sc *StrategyContext) Result
}

// Result is a strategy's output for one Execute call.
type Result struct {
	Candidates []engine.SliceCandidate
	Sidecar    *engine.StrategySidecar
	Warnings   []string
}

// IntensityKnobs are the three numeric dials every strategy scales by,
// keyed by intensity level.
type IntensityKnobs struct {
	MaxItems       int
	MaxHitsPerFile int
	ContextLines   int
}

// PlanState is the planner-owned record of files implicated by strategies
// that have already run. It replaces a freely shared mutable set: strategies
// only ever see a read-only Snapshot, and any files they implicate are
// appended through Append, which records them at once — never written to
// directly.
//
// Each appended path is tagged with the strategy name that implicated it, so
// a downstream strategy can scope to a specific producer's output (SnapshotFrom)
// instead of the whole accumulated set (Snapshot) when that's what it depends on.
type PlanState struct {
	mu     sync.Mutex
	files  []string
	source map[string]string
	seen   map[string]bool
}

// NewPlanState constructs an empty PlanState.
func NewPlanState() *PlanState {
	return &PlanState{seen: make(map[string]bool), source: make(map[string]string)}
}

// Snapshot returns the files implicated so far, safe to retain and range
// over without further locking.
func (p *PlanState) Snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.files))
	copy(out, p.files)
	return out
}

// SnapshotFrom returns only the files implicated by one of the named
// strategies, in the order they were appended.
func (p *PlanState) SnapshotFrom(strategyNames ...string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	want := make(map[string]bool, len(strategyNames))
	for _, name := range strategyNames {
		want[name] = true
	}
	var out []string
	for _, path := range p.files {
		if want[p.source[path]] {
			out = append(out, path)
		}
	}
	return out
}

// Append records additional implicated paths, deduplicating against what is
// already known. source is the name of the strategy implicating these paths,
// recorded for SnapshotFrom; the first strategy to implicate a given path
// owns it.
func (p *PlanState) Append(source string, paths ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, path := range paths {
		if path == "" || p.seen[path] {
			continue
		}
		p.seen[path] = true
		p.source[path] = source
		p.files = append(p.files, path)
	}
}

// StrategyContext is the read-only (aside from State) view a
// strategy executes against.
type StrategyContext struct {
	RepoRoot  string
	Request   engine.SliceRequest
	Keywords  []string
	State     *PlanState
	Intensity engine.Intensity
	Knobs     IntensityKnobs

	// RemainingBudget is informational; strategies may use it to scale
	// their own output but the selector is the sole budget enforcer.
	RemainingBudget int

	Inspector inspector.Inspector
	Estimator estimator.Estimator

	// Backend is an opaque handle strategies needing an extra collaborator
	// (embedding index, WASM runtime) type-assert out of.
	Backend any
}

// Estimate is a convenience wrapper around sc.Estimator.Estimate.
func (sc *StrategyContext) Estimate(text string) int {
	return sc.Estimator.Estimate(text)
}
