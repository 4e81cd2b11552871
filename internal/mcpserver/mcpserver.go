// Package mcpserver exposes the contextslicer engine's two public
// operations, planning and assembly, as Model Context Protocol tools. Each
// tool call resolves configuration and runs the planner; the assemble tool
// then also runs the selector and assembler and renders the bundle - the engine makes no outbound network or
// model-provider calls of its own; only the transport lives here.
package mcpserver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/contextslicer/contextslicer/internal/config"
	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/estimator"
	"github.com/contextslicer/contextslicer/internal/formatter"
	"github.com/contextslicer/contextslicer/internal/inspector/fsrepo"
	"github.com/contextslicer/contextslicer/internal/pipeline"
	"github.com/contextslicer/contextslicer/internal/planner"
	"github.com/contextslicer/contextslicer/internal/registry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register adds the plan and assemble tools to server.
func Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan",
		Description: "Run the planner over a repository and return strategy candidate counts and token totals, without rendering a bundle.",
	}, planHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assemble",
		Description: "Plan, select, and render a full context bundle for a repository and task, in XML, Markdown, or JSON.",
	}, assembleHandler)
}

// requestParams is the shared shape of both tools' inputs.
type requestParams struct {
	Task       string   `json:"task,omitempty" jsonschema:"free-text task description driving the slice"`
	Dir        string   `json:"dir,omitempty" jsonschema:"repository root to slice, defaults to the current directory"`
	Budget     int      `json:"budget,omitempty" jsonschema:"token budget cap, defaults to 8000; the active profile's budget is not used"`
	Intensity  string   `json:"intensity,omitempty" jsonschema:"lite, standard, or deep"`
	Strategies []string `json:"strategies,omitempty" jsonschema:"explicit strategy permutation, overrides the profile default set"`
	Include    []string `json:"include,omitempty" jsonschema:"include glob patterns"`
	Exclude    []string `json:"exclude,omitempty" jsonschema:"exclude glob patterns"`
	Profile    string   `json:"profile,omitempty" jsonschema:"named profile to activate"`
}

// PlanParams is the input schema for the plan tool.
type PlanParams struct {
	requestParams
}

// PlanOutput summarizes a SlicePlan without its (potentially large)
// candidate content.
type PlanOutput struct {
	PlanID         string                          `json:"planId"`
	CandidateCount int                             `json:"candidateCount"`
	GrossTokens    int                             `json:"grossTokens"`
	StrategyTotals map[string]engine.StrategyStats `json:"strategyTotals"`
	Warnings       []string                        `json:"warnings,omitempty"`
}

func planHandler(ctx context.Context, _ *mcp.CallToolRequest, params PlanParams) (*mcp.CallToolResult, PlanOutput, error) {
	fv, err := buildFlagValues(params.requestParams, "", "")
	if err != nil {
		return nil, PlanOutput{}, err
	}

	plan, err := runPlan(ctx, fv)
	if err != nil {
		return nil, PlanOutput{}, err
	}

	out := PlanOutput{
		PlanID:         plan.PlanID,
		CandidateCount: len(plan.Candidates),
		GrossTokens:    plan.GrossTokens,
		StrategyTotals: plan.StrategyTotals,
		Warnings:       plan.Warnings,
	}
	return textResult(fmt.Sprintf("planned %d candidate(s), %d gross tokens across %d strategies",
		out.CandidateCount, out.GrossTokens, len(out.StrategyTotals))), out, nil
}

// AssembleParams is the input schema for the assemble tool.
type AssembleParams struct {
	requestParams
	Format string `json:"format,omitempty" jsonschema:"xml, markdown, or json, defaults to xml; the active profile's format is not used"`
	Target string `json:"target,omitempty" jsonschema:"consuming-agent preset: claude, chatgpt, generic"`
}

// AssembleOutput carries the rendered bundle and its selection metadata.
type AssembleOutput struct {
	Rendered    string   `json:"rendered"`
	TotalTokens int      `json:"totalTokens"`
	Budget      int      `json:"budget"`
	Warnings    []string `json:"warnings,omitempty"`
}

func assembleHandler(ctx context.Context, _ *mcp.CallToolRequest, params AssembleParams) (*mcp.CallToolResult, AssembleOutput, error) {
	fv, err := buildFlagValues(params.requestParams, params.Format, params.Target)
	if err != nil {
		return nil, AssembleOutput{}, err
	}

	outcome, err := pipeline.BuildResult(ctx, fv)
	if err != nil {
		return nil, AssembleOutput{}, err
	}

	rendered, err := formatter.New(formatter.Format(outcome.Resolved.Profile.Format)).Format(outcome.Result.Result)
	if err != nil {
		return nil, AssembleOutput{}, fmt.Errorf("rendering bundle: %w", err)
	}

	out := AssembleOutput{
		Rendered:    rendered,
		TotalTokens: outcome.Result.TotalTokens,
		Budget:      outcome.Result.Budget,
		Warnings:    append(append([]string{}, outcome.Plan.Warnings...), outcome.Result.Warnings...),
	}
	return textResult(rendered), out, nil
}

// runPlan resolves configuration and runs only the planning stage, stopping
// short of selection and assembly - the plan tool's whole point is to let a
// caller preview strategy yields before paying for a full render.
func runPlan(ctx context.Context, fv *config.FlagValues) (engine.SlicePlan, error) {
	resolved, err := config.Resolve(config.ResolveOptions{
		ProfileName: fv.Profile,
		TargetDir:   fv.Dir,
	})
	if err != nil {
		return engine.SlicePlan{}, fmt.Errorf("resolving configuration: %w", err)
	}
	profile := resolved.Profile

	absDir, err := absPath(fv.Dir)
	if err != nil {
		return engine.SlicePlan{}, fmt.Errorf("resolving repository root: %w", err)
	}

	repo, err := fsrepo.New(absDir, fsrepo.Options{
		Include: profile.Include,
		Exclude: profile.Ignore,
	})
	if err != nil {
		return engine.SlicePlan{}, fmt.Errorf("opening repository: %w", err)
	}

	est, err := estimator.New(profile.Tokenizer)
	if err != nil {
		return engine.SlicePlan{}, fmt.Errorf("constructing token estimator: %w", err)
	}

	reg := registry.NewWithBuiltins()
	logger := config.NewLogger("mcpserver")
	p := planner.New(reg, repo, est, nil, logger)

	strategies := fv.Strategies
	if len(strategies) == 0 {
		strategies = strategiesForIntensity(profile, engine.Intensity(fv.Intensity))
	}

	req := engine.SliceRequest{
		Task:            fv.Task,
		RepoRoot:        absDir,
		BudgetTokens:    fv.Budget,
		Intensity:       engine.Intensity(fv.Intensity),
		Strategies:      strategies,
		Include:         fv.Includes,
		Exclude:         fv.Excludes,
		WantTreeSidecar: profile.WantTreeSidecar,
	}

	plan, err := p.Plan(ctx, req)
	if err != nil {
		return engine.SlicePlan{}, fmt.Errorf("planning slice: %w", err)
	}
	return plan, nil
}

// strategiesForIntensity picks the profile's default strategy set for the
// given intensity, falling back to "standard" when unset or invalid.
func strategiesForIntensity(profile *config.Profile, intensity engine.Intensity) []string {
	switch intensity {
	case engine.IntensityLite:
		return profile.Strategies.Lite
	case engine.IntensityDeep:
		return profile.Strategies.Deep
	default:
		return profile.Strategies.Standard
	}
}

// buildFlagValues translates MCP tool parameters into the FlagValues shape
// the pipeline package expects, applying the same defaults the CLI's
// BindFlags would.
func buildFlagValues(p requestParams, format, target string) (*config.FlagValues, error) {
	dir := p.Dir
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dir: %s is not a directory", dir)
	}

	budget := p.Budget
	if budget <= 0 {
		budget = config.DefaultBudget
	}

	intensity := p.Intensity
	if intensity == "" {
		intensity = string(engine.IntensityStandard)
	}

	if format == "" {
		format = "xml"
	}

	return &config.FlagValues{
		Task:       p.Task,
		Dir:        dir,
		Budget:     budget,
		Format:     format,
		Target:     target,
		Intensity:  intensity,
		Strategies: p.Strategies,
		Includes:   p.Include,
		Excludes:   p.Exclude,
		Profile:    p.Profile,
	}, nil
}

// absPath resolves dir to an absolute path, mirroring the pipeline
// package's own helper since it is unexported there.
func absPath(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	return filepath.Abs(dir)
}

func textResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: s}},
	}
}
