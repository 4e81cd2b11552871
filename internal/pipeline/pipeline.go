package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/contextslicer/contextslicer/internal/assembler"
	"github.com/contextslicer/contextslicer/internal/config"
	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/estimator"
	"github.com/contextslicer/contextslicer/internal/formatter"
	"github.com/contextslicer/contextslicer/internal/inspector/fsrepo"
	"github.com/contextslicer/contextslicer/internal/planner"
	"github.com/contextslicer/contextslicer/internal/registry"
)

// Outcome bundles the resolved configuration and the assembled slice result,
// for callers (generate, preview) that each render it differently.
type Outcome struct {
	Resolved *config.ResolvedConfig
	Plan     engine.SlicePlan
	Result   engine.SliceResult
}

// BuildResult resolves configuration, constructs a SliceRequest, and runs it
// through the planner and selector/assembler. It stops short of rendering or
// writing output, so both `generate` (which renders) and `preview` (which
// reports) can share it.
func BuildResult(ctx context.Context, fv *config.FlagValues) (*Outcome, error) {
	cliFlags := buildCLIFlagOverrides(fv)
	resolved, err := config.Resolve(config.ResolveOptions{
		ProfileName: fv.Profile,
		TargetDir:   fv.Dir,
		CLIFlags:    cliFlags,
	})
	if err != nil {
		return nil, NewError("resolving configuration", err)
	}
	profile := resolved.Profile

	slog.Debug("configuration resolved",
		"profile", resolved.ProfileName,
		"format", profile.Format,
		"budget", profile.Budget,
		"tokenizer", profile.Tokenizer,
	)

	absDir, err := absPath(fv.Dir)
	if err != nil {
		return nil, NewError("resolving repository root", err)
	}

	repo, err := fsrepo.New(absDir, fsrepo.Options{
		Include: profile.Include,
		Exclude: profile.Ignore,
	})
	if err != nil {
		return nil, NewError("opening repository", err)
	}

	est, err := estimator.New(profile.Tokenizer)
	if err != nil {
		return nil, NewError("constructing token estimator", err)
	}

	reg := registry.NewWithBuiltins()
	logger := config.NewLogger("planner")
	p := planner.New(reg, repo, est, nil, logger)

	req := engine.SliceRequest{
		Task:            fv.Task,
		RepoRoot:        absDir,
		BudgetTokens:    profile.Budget,
		Intensity:       engine.Intensity(profile.DefaultIntensity),
		Strategies:      strategiesForIntensity(profile, fv),
		Include:         profile.Include,
		Exclude:         profile.Ignore,
		StrategyCaps:    strategyCapsToEngine(profile.StrategyCaps),
		WantTreeSidecar: profile.WantTreeSidecar,
	}

	plan, err := p.Plan(ctx, req)
	if err != nil {
		if engine.IsCancelled(err) {
			return nil, NewError("plan cancelled", err)
		}
		return nil, NewError("planning slice", err)
	}

	for _, w := range plan.Warnings {
		slog.Warn("planner warning", "message", w)
	}

	result := assembler.Assemble(plan, profile.Budget)
	for _, w := range result.Warnings {
		slog.Warn("selection warning", "message", w)
	}

	return &Outcome{Resolved: resolved, Plan: plan, Result: result}, nil
}

// Run resolves configuration, builds a SliceRequest, runs the planner,
// selects and assembles the result, renders it with the requested
// formatter, and writes the output to stdout and/or the --output file.
//
// It is the central orchestrator the CLI commands call into; it owns no
// ranking or formatting logic itself, only the wiring between stages.
func Run(ctx context.Context, fv *config.FlagValues) error {
	slog.Info("starting context slice", "dir", fv.Dir, "format", fv.Format)

	outcome, err := BuildResult(ctx, fv)
	if err != nil {
		return err
	}
	profile := outcome.Resolved.Profile
	result := outcome.Result

	rendered, err := formatter.New(formatter.Format(profile.Format)).Format(result.Result)
	if err != nil {
		return NewError("rendering output", err)
	}

	if fv.Output != "" {
		if err := os.WriteFile(fv.Output, []byte(rendered), 0644); err != nil {
			return NewError("writing output file", err)
		}
		slog.Info("wrote output file", "path", fv.Output, "tokens", result.TotalTokens)
	}

	if fv.Stdout || fv.Output == "" {
		fmt.Println(rendered)
	}

	if len(outcome.Plan.Warnings) > 0 || len(result.Warnings) > 0 {
		return NewPartialError("slice completed with warnings", nil)
	}

	return nil
}

// buildCLIFlagOverrides converts explicitly-provided CLI flags into the flat
// map consumed as the highest-precedence resolution layer. Only flags the
// caller actually set are included so that unset flags don't shadow values
// from the profile, env, or config layers.
func buildCLIFlagOverrides(fv *config.FlagValues) map[string]any {
	m := make(map[string]any)

	if fv.Format != "" {
		m["format"] = fv.Format
	}
	if fv.Budget > 0 {
		m["budget"] = fv.Budget
	}
	if fv.Target != "" {
		m["target"] = fv.Target
	}
	if fv.Intensity != "" {
		m["default_intensity"] = fv.Intensity
	}
	if len(fv.Includes) > 0 {
		m["include"] = fv.Includes
	}
	if len(fv.Excludes) > 0 {
		m["ignore"] = fv.Excludes
	}

	return m
}

// strategiesForIntensity picks the strategy permutation: an explicit
// --strategy flag wins outright, otherwise the profile's set for the
// resolved default intensity is used.
func strategiesForIntensity(p *config.Profile, fv *config.FlagValues) []string {
	if len(fv.Strategies) > 0 {
		return fv.Strategies
	}
	switch p.DefaultIntensity {
	case "lite":
		return p.Strategies.Lite
	case "deep":
		return p.Strategies.Deep
	default:
		return p.Strategies.Standard
	}
}

// strategyCapsToEngine drops the config-only BudgetFraction field, since the
// engine's StrategyCap only carries the item/token limits actually enforced
// at selection time.
func strategyCapsToEngine(caps map[string]config.StrategyCap) map[string]engine.StrategyCap {
	if len(caps) == 0 {
		return nil
	}
	out := make(map[string]engine.StrategyCap, len(caps))
	for name, c := range caps {
		out[name] = engine.StrategyCap{MaxItems: c.MaxItems, MaxTokens: c.MaxTokens}
	}
	return out
}

func absPath(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	return filepath.Abs(dir)
}
