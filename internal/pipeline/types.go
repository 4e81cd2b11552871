// Package pipeline wires the resolved configuration, the strategy registry,
// the repository inspector, the planner, the selector/assembler, and a
// formatter into a single end-to-end run. It is the orchestration layer the
// CLI commands call into; it contains no strategy or ranking logic of its
// own.
package pipeline

// ExitCode represents the process exit code returned by the contextslicer
// CLI.
type ExitCode int

const (
	// ExitSuccess indicates the run completed and produced output.
	ExitSuccess ExitCode = 0

	// ExitError indicates a fatal error occurred before any output could be
	// produced.
	ExitError ExitCode = 1

	// ExitPartial indicates the run produced output, but the planner or
	// selector reported at least one warning (for example a strategy that
	// failed or timed out). A cancelled run exits with ExitError instead.
	ExitPartial ExitCode = 2
)
