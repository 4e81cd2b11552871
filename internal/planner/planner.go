// Package planner orchestrates strategy execution: validating a
// SliceRequest, deriving keywords, filtering unavailable strategies,
// running strategies in declared order against a shared PlanState, and
// aggregating their output into an immutable SlicePlan. No budget
// enforcement happens here — that is internal/selector's job.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/estimator"
	"github.com/contextslicer/contextslicer/internal/inspector"
	"github.com/contextslicer/contextslicer/internal/keywords"
	"github.com/contextslicer/contextslicer/internal/registry"
	"github.com/contextslicer/contextslicer/internal/strategies"
)

// canonicalOrder is the declared producer/consumer ordering: symbols,
// graph, and semantic consume matchedFiles seeded by earlier strategies.
var canonicalOrder = []string{
	"explicit", "inventory", "skeleton", "keyword", "symbols", "ast",
	"config", "diff", "graph", "semantic", "complexity", "docs", "forest",
}

var canonicalIndex = func() map[string]int {
	m := make(map[string]int, len(canonicalOrder))
	for i, name := range canonicalOrder {
		m[name] = i
	}
	return m
}()

// StrategyTimeout is the soft per-strategy timeout; exceeding it marks that
// strategy failed with a warning and treats it as having returned zero
// candidates. Policy, not contract.
var StrategyTimeout = 30 * time.Second

// Planner runs the six-step planning contract against a Registry, an
// Inspector, and a Token Estimator.
type Planner struct {
	Registry  *registry.Registry
	Inspector inspector.Inspector
	Estimator estimator.Estimator
	Backend   any
	Logger    *slog.Logger
}

// New constructs a Planner. logger may be nil, in which case slog.Default
// is used.
func New(reg *registry.Registry, insp inspector.Inspector, est estimator.Estimator, backend any, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{Registry: reg, Inspector: insp, Estimator: est, Backend: backend, Logger: logger.With("component", "planner")}
}

// Plan runs the full six-step contract and returns an immutable SlicePlan.
func (p *Planner) Plan(ctx context.Context, req engine.SliceRequest) (engine.SlicePlan, error) {
	if err := validate(req, p.Registry); err != nil {
		return engine.SlicePlan{}, err
	}

	planID := uuid.New().String()
	p.Logger.Debug("planning slice", "planID", planID, "task", req.Task, "budget", req.BudgetTokens)

	kw := keywords.Derive(req.Task, nil)

	ordered, warnings := p.orderedStrategies(req.Strategies)

	state := strategies.NewPlanState()
	var candidates []engine.SliceCandidate
	var sidecars []*engine.StrategySidecar
	strategyTotals := make(map[string]engine.StrategyStats)

	for _, name := range ordered {
		select {
		case <-ctx.Done():
			return engine.SlicePlan{}, engine.NewCancelled(fmt.Errorf("plan cancelled before strategy %q: %w", name, ctx.Err()))
		default:
		}

		strategy, err := p.Registry.Build(name)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("strategy %q unavailable: %v", name, err))
			continue
		}

		sc := &strategies.StrategyContext{
			RepoRoot:        req.RepoRoot,
			Request:         req,
			Keywords:        kw,
			State:           state,
			Intensity:       req.EffectiveIntensity(name),
			RemainingBudget: req.BudgetTokens,
			Inspector:       p.Inspector,
			Estimator:       p.Estimator,
			Backend:         p.Backend,
		}
		sc.Knobs = strategies.DefaultKnobs(name, sc.Intensity)
		if cap, ok := req.StrategyCaps[name]; ok && cap.MaxItems > 0 {
			sc.Knobs.MaxItems = cap.MaxItems
		}

		if !strategy.IsAvailable(ctx, sc) {
			warnings = append(warnings, fmt.Sprintf("strategy %q unavailable: prerequisite not met", name))
			continue
		}

		result, err := p.runWithTimeout(ctx, strategy, sc)
		if err != nil {
			if engine.IsCancelled(err) {
				return engine.SlicePlan{}, err
			}
			warnings = append(warnings, fmt.Sprintf("strategy %q failed: %v", name, err))
			continue
		}

		for i := range result.Candidates {
			result.Candidates[i].EmissionIndex = i
		}
		candidates = append(candidates, result.Candidates...)
		warnings = append(warnings, result.Warnings...)
		if result.Sidecar != nil {
			sidecars = append(sidecars, result.Sidecar)
		}

		stats := strategyTotals[name]
		stats.Count += len(result.Candidates)
		for _, c := range result.Candidates {
			stats.Tokens += c.Tokens
		}
		strategyTotals[name] = stats
	}

	var treeSidecar *engine.StrategySidecar
	if req.WantTreeSidecar {
		for _, s := range sidecars {
			if s.Name == "tree" {
				treeSidecar = s
				break
			}
		}
	}

	gross := 0
	for _, c := range candidates {
		gross += c.Tokens
	}

	return engine.SlicePlan{
		PlanID:         planID,
		Request:        req,
		Candidates:     candidates,
		StrategyTotals: strategyTotals,
		Warnings:       warnings,
		TreeSidecar:    treeSidecar,
		GrossTokens:    gross,
	}, nil
}

// runWithTimeout bounds one strategy's Execute call with the soft per-
// strategy timeout via an errgroup, so a hung strategy cannot stall the
// whole plan; exceeding the timeout is reported as a warning, not an error,
// except when the parent context itself was cancelled.
func (p *Planner) runWithTimeout(ctx context.Context, strategy strategies.Strategy, sc *strategies.StrategyContext) (strategies.Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, StrategyTimeout)
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	var result strategies.Result
	group.Go(func() error {
		result = strategy.Execute(groupCtx, sc)
		return nil
	})

	if err := group.Wait(); err != nil {
		return strategies.Result{}, err
	}
	if runCtx.Err() != nil {
		if ctx.Err() != nil {
			return strategies.Result{}, engine.NewCancelled(ctx.Err())
		}
		return strategies.Result{}, fmt.Errorf("timed out after %s", StrategyTimeout)
	}
	return result, nil
}

// orderedStrategies honors the requested permutation of req.Strategies but
// warns when it places a consumer ahead of its producer relative to
// canonicalOrder.
func (p *Planner) orderedStrategies(requested []string) ([]string, []string) {
	var warnings []string
	ordered := append([]string(nil), requested...)

	lastSeenCanonicalIdx := -1
	for _, name := range ordered {
		idx, known := canonicalIndex[name]
		if !known {
			continue
		}
		if idx < lastSeenCanonicalIdx {
			warnings = append(warnings, fmt.Sprintf("strategy %q is ordered ahead of a strategy it normally consumes output from", name))
		}
		lastSeenCanonicalIdx = idx
	}
	return ordered, warnings
}

func validate(req engine.SliceRequest, reg *registry.Registry) error {
	if req.BudgetTokens < 256 {
		return engine.NewInvalidRequest("budget too small", fmt.Errorf("budgetTokens must be >= 256, got %d", req.BudgetTokens))
	}
	if req.Intensity != "" && !req.Intensity.Valid() {
		return engine.NewInvalidRequest("invalid intensity", fmt.Errorf("%q", req.Intensity))
	}
	for _, name := range req.Strategies {
		if !reg.Has(name) {
			return engine.NewInvalidRequest("unknown strategy", fmt.Errorf("%q", name))
		}
	}
	for _, inc := range req.Include {
		for _, exc := range req.Exclude {
			if inc == exc {
				return engine.NewInvalidRequest("conflicting include/exclude", fmt.Errorf("pattern %q is both included and excluded", inc))
			}
		}
	}
	return nil
}
