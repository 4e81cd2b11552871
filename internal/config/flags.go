package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// DefaultBudget is the default token budget when --budget is not specified.
const DefaultBudget = 8000

// FlagValues collects all parsed global flag values (the root command's
// persistent flags, shared by generate and preview).
// This struct is populated by BindFlags and passed to downstream stages
// (planner, selector, assembler, formatter).
type FlagValues struct {
	Task       string
	Dir        string
	Output     string
	Budget     int
	Format     string
	Target     string
	Intensity  string
	Strategies []string // explicit strategy permutation, empty means use the profile default
	Includes   []string
	Excludes   []string
	Stdout     bool
	Verbose    bool
	Quiet      bool
	Profile    string
}

// BindFlags registers all global persistent flags on the given Cobra command
// and returns a FlagValues pointer that will be populated when the command is
// executed. Callers should access the returned struct after flag parsing.
func BindFlags(cmd *cobra.Command) *FlagValues {
	fv := &FlagValues{}

	pf := cmd.PersistentFlags()
	pf.StringVar(&fv.Task, "task", "", "free-text task description driving the slice")
	pf.StringVarP(&fv.Dir, "dir", "d", ".", "repository root to slice")
	pf.StringVarP(&fv.Output, "output", "o", "", "write the rendered bundle to this file instead of stdout")
	pf.IntVar(&fv.Budget, "budget", DefaultBudget, "token budget cap for the rendered bundle")
	pf.StringVar(&fv.Format, "format", "xml", "output format: xml, markdown, json")
	pf.StringVar(&fv.Target, "target", "", "consuming-agent preset: claude, chatgpt, generic")
	pf.StringVar(&fv.Intensity, "intensity", "standard", "default intensity: lite, standard, deep")
	pf.StringArrayVar(&fv.Strategies, "strategy", nil, "explicit strategy permutation (repeatable, overrides the profile default set)")
	pf.StringArrayVar(&fv.Includes, "include", nil, "include glob pattern (repeatable)")
	pf.StringArrayVar(&fv.Excludes, "exclude", nil, "exclude glob pattern (repeatable)")
	pf.BoolVar(&fv.Stdout, "stdout", true, "write the rendered bundle to stdout")
	pf.BoolVarP(&fv.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&fv.Quiet, "quiet", "q", false, "suppress all output except errors")
	pf.StringVar(&fv.Profile, "profile", "", "named profile to activate")

	return fv
}

// ValidateFlags checks the parsed flag values for correctness and mutual
// exclusion. It also applies environment variable fallbacks and normalizes
// values. Call this from PersistentPreRunE after Cobra has parsed the flags.
func ValidateFlags(fv *FlagValues, cmd *cobra.Command) error {
	applyEnvOverrides(fv, cmd)

	if fv.Verbose && fv.Quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}

	info, err := os.Stat(fv.Dir)
	if err != nil {
		return fmt.Errorf("--dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("--dir: %s is not a directory", fv.Dir)
	}

	switch fv.Format {
	case "xml", "markdown", "json":
	default:
		return fmt.Errorf("--format: invalid value %q (allowed: xml, markdown, json)", fv.Format)
	}

	if fv.Target != "" {
		switch fv.Target {
		case "claude", "chatgpt", "generic":
		default:
			return fmt.Errorf("--target: invalid value %q (allowed: claude, chatgpt, generic)", fv.Target)
		}
	}

	switch fv.Intensity {
	case "lite", "standard", "deep":
	default:
		return fmt.Errorf("--intensity: invalid value %q (allowed: lite, standard, deep)", fv.Intensity)
	}

	if fv.Budget <= 0 {
		return fmt.Errorf("--budget: must be positive, got %d", fv.Budget)
	}

	return nil
}

// applyEnvOverrides applies environment variable fallbacks for flags that
// were not explicitly set on the command line. The prefix is
// CONTEXTSLICER_.
func applyEnvOverrides(fv *FlagValues, cmd *cobra.Command) {
	envMap := map[string]func(string){
		EnvFormat: func(v string) { fv.Format = v },
		EnvTarget: func(v string) { fv.Target = v },
	}

	for env, setter := range envMap {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		flagName := strings.ToLower(strings.TrimPrefix(env, "CONTEXTSLICER_"))
		if !cmd.Flags().Changed(flagName) {
			setter(v)
		}
	}

	if v := os.Getenv(EnvBudget); v != "" && !cmd.Flags().Changed("budget") {
		if n, err := strconv.Atoi(v); err == nil {
			fv.Budget = n
		}
	}
	if v := os.Getenv(EnvIntensity); v != "" && !cmd.Flags().Changed("intensity") {
		fv.Intensity = v
	}
	if os.Getenv("CONTEXTSLICER_VERBOSE") == "1" && !cmd.Flags().Changed("verbose") {
		fv.Verbose = true
	}
	if os.Getenv("CONTEXTSLICER_QUIET") == "1" && !cmd.Flags().Changed("quiet") {
		fv.Quiet = true
	}
}

// ParseSize parses a human-readable size string into bytes. It supports KB,
// MB, and GB suffixes (case-insensitive). Plain numbers without a suffix are
// treated as bytes. KB = 1024, MB = 1048576, GB = 1073741824.
//
// Used by the repository inspector's file-size guard when walking very large
// repositories.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)

	var suffix string
	var multiplier int64

	switch {
	case strings.HasSuffix(upper, "GB"):
		suffix = "GB"
		multiplier = 1024 * 1024 * 1024
	case strings.HasSuffix(upper, "MB"):
		suffix = "MB"
		multiplier = 1024 * 1024
	case strings.HasSuffix(upper, "KB"):
		suffix = "KB"
		multiplier = 1024
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if n < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return n, nil
	}

	numStr := strings.TrimSpace(s[:len(s)-len(suffix)])
	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(numStr, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if f < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return int64(f * float64(multiplier)), nil
	}
	if n < 0 {
		return 0, fmt.Errorf("size must be non-negative: %q", s)
	}
	return n * multiplier, nil
}
