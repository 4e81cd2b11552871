package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// knownStrategies is the set of builtin strategy names a Profile's
// strategies/strategy_caps tables may reference. It mirrors
// internal/registry.builtinStrategies without importing that package, which
// would create an import cycle (registry depends on strategies, which has no
// reason to depend back on config).
var knownStrategies = map[string]bool{
	"explicit": true, "inventory": true, "skeleton": true, "keyword": true,
	"symbols": true, "ast": true, "config": true, "diff": true, "graph": true,
	"complexity": true, "docs": true, "semantic": true, "forest": true,
}

var validFormats = map[string]bool{"xml": true, "markdown": true, "json": true}
var validTokenizers = map[string]bool{"char": true, "cl100k_base": true, "o200k_base": true}
var validIntensities = map[string]bool{"lite": true, "standard": true, "deep": true}

// Validate inspects every profile in cfg and returns a slice of
// ValidationErrors describing hard errors and warnings found across all
// named profiles. An empty slice means the configuration is fully valid.
//
// Validate does not modify cfg.
func Validate(cfg *Config) []ValidationError {
	if cfg == nil {
		return nil
	}
	var results []ValidationError

	names := make([]string, 0, len(cfg.Profile))
	for name := range cfg.Profile {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		results = append(results, validateProfile(name, cfg.Profile[name], cfg.Profile)...)
	}

	return results
}

func validateProfile(name string, p *Profile, allProfiles map[string]*Profile) []ValidationError {
	var results []ValidationError

	if p.Format != "" && !validFormats[p.Format] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    fmt.Sprintf("profile.%s.format", name),
			Message:  fmt.Sprintf("invalid format %q", p.Format),
			Suggest:  "use one of: xml, markdown, json",
		})
	}

	if p.Tokenizer != "" && !validTokenizers[p.Tokenizer] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    fmt.Sprintf("profile.%s.tokenizer", name),
			Message:  fmt.Sprintf("invalid tokenizer %q", p.Tokenizer),
			Suggest:  "use one of: char, cl100k_base, o200k_base",
		})
	}

	if p.DefaultIntensity != "" && !validIntensities[p.DefaultIntensity] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    fmt.Sprintf("profile.%s.default_intensity", name),
			Message:  fmt.Sprintf("invalid default_intensity %q", p.DefaultIntensity),
			Suggest:  "use one of: lite, standard, deep",
		})
	}

	if p.Budget < 0 {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    fmt.Sprintf("profile.%s.budget", name),
			Message:  "budget must not be negative",
		})
	} else if p.Budget > 0 && p.Budget < 256 {
		results = append(results, ValidationError{
			Severity: "warning",
			Field:    fmt.Sprintf("profile.%s.budget", name),
			Message:  fmt.Sprintf("budget %d is too small for a useful context bundle", p.Budget),
			Suggest:  "use at least 256 tokens",
		})
	}

	results = append(results, validateGlobPatterns(name, p)...)
	results = append(results, validateStrategyNames(name, p)...)
	results = append(results, warnBudgetFractionOverrun(name, p)...)
	results = append(results, warnDeepInheritance(name, p, allProfiles)...)

	return results
}

func validateGlobPatterns(profileName string, p *Profile) []ValidationError {
	var results []ValidationError
	check := func(field string, patterns []string) {
		for _, pattern := range patterns {
			if err := validateGlobPattern(pattern); err != nil {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    fmt.Sprintf("profile.%s.%s", profileName, field),
					Message:  fmt.Sprintf("invalid glob pattern %q: %v", pattern, err),
				})
			}
		}
	}
	check("ignore", p.Ignore)
	check("include", p.Include)
	return results
}

func validateGlobPattern(pattern string) error {
	_, err := doublestar.Match(pattern, "probe")
	return err
}

// validateStrategyNames flags any strategy name mentioned in a strategies
// list or strategy_caps table that is not one of the builtin strategies.
// Externally loaded WASM plugins register under their own names at runtime,
// so an unrecognized name here is a warning, not a hard error.
func validateStrategyNames(profileName string, p *Profile) []ValidationError {
	var results []ValidationError
	check := func(field string, names []string) {
		for _, name := range names {
			if !knownStrategies[name] {
				results = append(results, ValidationError{
					Severity: "warning",
					Field:    fmt.Sprintf("profile.%s.%s", profileName, field),
					Message:  fmt.Sprintf("%q is not a builtin strategy", name),
					Suggest:  "verify it is registered by a loaded WASM plugin",
				})
			}
		}
	}
	check("strategies.lite", p.Strategies.Lite)
	check("strategies.standard", p.Strategies.Standard)
	check("strategies.deep", p.Strategies.Deep)

	for name := range p.StrategyCaps {
		if !knownStrategies[name] {
			results = append(results, ValidationError{
				Severity: "warning",
				Field:    fmt.Sprintf("profile.%s.strategy_caps.%s", profileName, name),
				Message:  fmt.Sprintf("%q is not a builtin strategy", name),
			})
		}
	}
	return results
}

// warnBudgetFractionOverrun flags a profile whose strategy_caps entries sum
// to more than 1.0 of the total budget, which starves every strategy of its
// declared share once the selector applies per-strategy soft caps.
func warnBudgetFractionOverrun(profileName string, p *Profile) []ValidationError {
	var total float64
	for _, c := range p.StrategyCaps {
		total += c.BudgetFraction
	}
	if total > 1.0 {
		return []ValidationError{{
			Severity: "warning",
			Field:    fmt.Sprintf("profile.%s.strategy_caps", profileName),
			Message:  fmt.Sprintf("budget_fraction entries sum to %.2f, over the 1.0 total budget", total),
			Suggest:  "lower some strategies' budget_fraction so the total does not exceed 1.0",
		}}
	}
	return nil
}

func warnDeepInheritance(profileName string, p *Profile, allProfiles map[string]*Profile) []ValidationError {
	if p.Extends == nil {
		return nil
	}
	depth := 1
	seen := map[string]bool{profileName: true}
	current := *p.Extends
	for current != "" && current != "default" {
		if seen[current] {
			return nil // circular; ResolveProfile reports this separately
		}
		seen[current] = true
		depth++
		parent, ok := allProfiles[current]
		if !ok || parent.Extends == nil {
			break
		}
		current = *parent.Extends
	}
	if depth > maxInheritanceDepth {
		return []ValidationError{{
			Severity: "warning",
			Field:    fmt.Sprintf("profile.%s.extends", profileName),
			Message:  fmt.Sprintf("inheritance chain is %d levels deep", depth),
			Suggest:  "consider flattening into fewer profiles",
		}}
	}
	return nil
}

// Lint returns non-fatal style findings across every profile in cfg, distinct
// from Validate's correctness findings.
func Lint(cfg *Config) []LintResult {
	if cfg == nil {
		return nil
	}
	var results []LintResult

	names := make([]string, 0, len(cfg.Profile))
	for name := range cfg.Profile {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		results = append(results, lintProfile(name, cfg.Profile[name])...)
	}
	return results
}

func lintProfile(profileName string, p *Profile) []LintResult {
	var results []LintResult
	results = append(results, lintEmptyStrategySet(profileName, p)...)
	results = append(results, lintNoExtPatterns(profileName, p)...)
	return results
}

// lintEmptyStrategySet flags an intensity level with no strategies at all,
// which silently produces an empty SlicePlan for that intensity.
func lintEmptyStrategySet(profileName string, p *Profile) []LintResult {
	var results []LintResult
	levels := []struct {
		name  string
		value []string
	}{
		{"lite", p.Strategies.Lite},
		{"standard", p.Strategies.Standard},
		{"deep", p.Strategies.Deep},
	}
	for _, level := range levels {
		if len(level.value) == 0 {
			results = append(results, LintResult{
				Code: "empty-strategy-set",
				ValidationError: ValidationError{
					Severity: "warning",
					Field:    fmt.Sprintf("profile.%s.strategies.%s", profileName, level.name),
					Message:  "no strategies configured for this intensity",
				},
			})
		}
	}
	return results
}

// lintNoExtPatterns flags ignore patterns with no file extension and no
// wildcard, which usually indicates a directory name that should end in "/**".
func lintNoExtPatterns(profileName string, p *Profile) []LintResult {
	var results []LintResult
	for _, pattern := range p.Ignore {
		if !strings.ContainsAny(pattern, "*?[.") {
			results = append(results, LintResult{
				Code: "no-ext-pattern",
				ValidationError: ValidationError{
					Severity: "warning",
					Field:    fmt.Sprintf("profile.%s.ignore", profileName),
					Message:  fmt.Sprintf("pattern %q has no extension or wildcard", pattern),
					Suggest:  fmt.Sprintf("did you mean %q?", pattern+"/**"),
				},
			})
		}
	}
	return results
}
