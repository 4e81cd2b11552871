// Package cli implements the Cobra command hierarchy for the contextslicer
// CLI tool. This file implements the `contextslicer preview` subcommand
// which shows the planned selection and its token budget without writing a
// rendered bundle.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/contextslicer/contextslicer/internal/pipeline"
)

// previewCmd implements `contextslicer preview` which runs the planner and
// selector and reports which candidates would be included, without
// rendering or writing an output bundle.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the selected candidates and token budget without generating output",
	Long: `Preview runs the same strategy planning and selection as 'generate' but
stops short of rendering a bundle. Use it to inspect which files and
representations would be included, their token counts, and how close the
selection comes to the configured budget.

Examples:
  # Preview the current directory
  contextslicer preview

  # Preview for a specific task
  contextslicer preview --task "explain the auth flow"

  # Show the 20 largest selected candidates by token count
  contextslicer preview --top 20`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int("top", 0, "show only the N largest selected candidates by token count (0 shows all)")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	fv := GlobalFlags()

	outcome, err := pipeline.BuildResult(cmd.Context(), fv)
	if err != nil {
		return err
	}

	top, _ := cmd.Flags().GetInt("top")
	out := cmd.OutOrStdout()

	PrintSelectionReport(out, outcome.Result)
	if top > 0 {
		PrintTopCandidates(out, outcome.Result.Selected, top)
	}

	return nil
}
