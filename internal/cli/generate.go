package cli

import (
	"github.com/contextslicer/contextslicer/internal/pipeline"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Slice a codebase into an LLM-optimized context bundle",
	Long: `Run the configured strategies against a repository, rank and select their
candidates against a token budget, and render a single context bundle.

This is the primary workflow command. Running 'contextslicer' with no
subcommand is equivalent to running 'contextslicer generate'.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	return pipeline.Run(cmd.Context(), flagValues)
}
