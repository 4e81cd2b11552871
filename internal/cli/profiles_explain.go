package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/contextslicer/contextslicer/internal/config"
	"github.com/spf13/cobra"
)

// profilesExplainCmd shows how the active profile processes a specific file.
var profilesExplainCmd = &cobra.Command{
	Use:   "explain <filepath>",
	Short: "Show how the active profile processes a file",
	Long: `Simulate the discovery stage of slicing for a given file path and show the
full rule trace: which default ignore patterns, profile ignore patterns, and
include filters apply, and which strategies could structurally parse it.

The command is informational only -- it does not run the planner or produce
a context bundle.

Pass a glob pattern (e.g. "src/**/*.ts") to explain multiple matching files.
Use --profile to explain against a specific named profile.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfilesExplain,
	ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveDefault
	},
}

func init() {
	profilesExplainCmd.Flags().String("profile", "", "profile name to explain against")
	profilesCmd.AddCommand(profilesExplainCmd)
}

// runProfilesExplain implements `contextslicer profiles explain <filepath>`.
func runProfilesExplain(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	profileFlag, _ := cmd.Flags().GetString("profile")
	out := cmd.OutOrStdout()

	// Resolve the profile through the full multi-source pipeline.
	resolveOpts := config.ResolveOptions{TargetDir: "."}
	if profileFlag != "" {
		resolveOpts.ProfileName = profileFlag
	}
	resolved, err := config.Resolve(resolveOpts)
	if err != nil {
		return fmt.Errorf("resolving profile: %w", err)
	}

	profileName := resolved.ProfileName

	// Determine whether filePath is a glob pattern.
	isGlob := strings.ContainsAny(filePath, "*?[{")

	if isGlob {
		// Expand the glob pattern against the current directory.
		matches, err := doublestar.Glob(os.DirFS("."), filePath, doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("expanding glob %q: %w", filePath, err)
		}
		if len(matches) == 0 {
			fmt.Fprintf(out, "No files matched glob pattern %q\n", filePath)
			return nil
		}
		for i, match := range matches {
			if i > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, strings.Repeat("-", 60))
				fmt.Fprintln(out)
			}
			result := config.ExplainFile(match, profileName, resolved.Profile)
			printExplainResult(out, result)
		}
		return nil
	}

	// Single file path.
	result := config.ExplainFile(filePath, profileName, resolved.Profile)
	printExplainResult(out, result)
	return nil
}

// printExplainResult formats and writes a single ExplainResult to w.
func printExplainResult(w io.Writer, result config.ExplainResult) {
	// Header: file path being explained.
	fmt.Fprintf(w, "Explaining: %s\n", result.FilePath)

	// Profile line.
	if result.Extends != "" {
		fmt.Fprintf(w, "Profile: %s (extends: %s)\n", result.ProfileName, result.Extends)
	} else {
		fmt.Fprintf(w, "Profile: %s\n", result.ProfileName)
	}
	fmt.Fprintln(w)

	if result.Included {
		fmt.Fprintf(w, "  Status:    INCLUDED\n")
		fmt.Fprintf(w, "  Structure: %s\n", formatStructureLanguage(result.StructureLanguage))
	} else {
		fmt.Fprintf(w, "  Status:     EXCLUDED\n")
		fmt.Fprintf(w, "  Excluded by: %s\n", result.ExcludedBy)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rule trace:")
	for _, step := range result.Trace {
		fmt.Fprintf(w, "  %d. %s: %s\n", step.StepNum, step.Rule, step.Outcome)
	}
}

// formatStructureLanguage returns a human-readable string for the
// tree-sitter language the ast, skeleton, and symbols strategies would use
// for this file, or a message explaining that only full/snippet
// representations apply.
func formatStructureLanguage(lang string) string {
	if lang != "" {
		return fmt.Sprintf("%s (ast/skeleton/symbols supported)", lang)
	}
	return "none (full/snippet representation only)"
}
