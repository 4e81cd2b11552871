package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/contextslicer/contextslicer/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandUse(t *testing.T) {
	assert.Equal(t, "contextslicer", rootCmd.Use)
}

func TestRootCommandSilenceUsage(t *testing.T) {
	assert.True(t, rootCmd.SilenceUsage, "SilenceUsage must be true to avoid printing usage on errors")
}

func TestRootCommandSilenceErrors(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors, "SilenceErrors must be true for manual error handling")
}

func TestRootCommandHasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag, "root command must have --verbose persistent flag")
	assert.Equal(t, "v", flag.Shorthand)
}

func TestRootCommandHasQuietFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("quiet")
	require.NotNil(t, flag, "root command must have --quiet persistent flag")
	assert.Equal(t, "q", flag.Shorthand)
}

func TestRootCommandHasDirFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("dir")
	require.NotNil(t, flag, "root command must have --dir persistent flag")
	assert.Equal(t, "d", flag.Shorthand)
	assert.Equal(t, ".", flag.DefValue)
}

func TestRootCommandHasOutputFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("output")
	require.NotNil(t, flag, "root command must have --output persistent flag")
	assert.Equal(t, "o", flag.Shorthand)
}

func TestRootCommandHasFormatFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("format")
	require.NotNil(t, flag, "root command must have --format persistent flag")
	assert.Equal(t, "xml", flag.DefValue)
}

func TestRootCommandHasTargetFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("target")
	require.NotNil(t, flag, "root command must have --target persistent flag")
}

func TestRootCommandHasIntensityFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("intensity")
	require.NotNil(t, flag, "root command must have --intensity persistent flag")
	assert.Equal(t, "standard", flag.DefValue)
}

func TestRootCommandHasBudgetFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("budget")
	require.NotNil(t, flag, "root command must have --budget persistent flag")
	assert.Equal(t, "8000", flag.DefValue)
}

func TestRootCommandHasStdoutFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("stdout")
	require.NotNil(t, flag, "root command must have --stdout persistent flag")
	assert.Equal(t, "true", flag.DefValue)
}

func TestRootCommandHasProfileFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("profile")
	require.NotNil(t, flag, "root command must have --profile persistent flag")
}

func TestRootCommandHasRepeatableFlags(t *testing.T) {
	for _, name := range []string{"strategy", "include", "exclude"} {
		t.Run(name, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(name)
			require.NotNil(t, flag, "root command must have --%s persistent flag", name)
		})
	}
}

func TestExecuteWithHelp(t *testing.T) {
	// Running with --help should succeed (exit 0).
	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)
	assert.Contains(t, buf.String(), "context")
}

func TestExecuteHelpShowsAllFlags(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)

	output := buf.String()
	expectedFlags := []string{
		"--dir", "--output", "--task", "--include", "--exclude",
		"--format", "--target", "--intensity", "--strategy",
		"--stdout", "--verbose", "--quiet", "--profile", "--budget",
	}
	for _, flag := range expectedFlags {
		assert.Contains(t, output, flag, "help output should show %s flag", flag)
	}
}

func TestExecuteWithNoArgs(t *testing.T) {
	// Running with no args delegates to generate and should succeed.
	rootCmd.SetArgs([]string{})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)
}

func TestExecuteWithUnknownFlag(t *testing.T) {
	// Running with an unknown flag should return a non-zero exit code.
	rootCmd.SetArgs([]string{"--nonexistent-flag"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetErr(buf)
	defer rootCmd.SetErr(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitError), code)
}

func TestRootCmdReturnsCommand(t *testing.T) {
	cmd := RootCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "contextslicer", cmd.Use)
}

func TestGlobalFlagsReturnsValues(t *testing.T) {
	fv := GlobalFlags()
	require.NotNil(t, fv, "GlobalFlags() should return non-nil FlagValues")
}

func TestExtractExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error returns ExitSuccess",
			err:  nil,
			want: int(pipeline.ExitSuccess),
		},
		{
			name: "generic error returns ExitError",
			err:  errors.New("something went wrong"),
			want: int(pipeline.ExitError),
		},
		{
			name: "RunError with ExitError code",
			err:  pipeline.NewError("fatal error", errors.New("cause")),
			want: int(pipeline.ExitError),
		},
		{
			name: "RunError with ExitPartial code",
			err:  pipeline.NewPartialError("partial failure", errors.New("some strategies failed")),
			want: int(pipeline.ExitPartial),
		},
		{
			name: "wrapped RunError preserves exit code",
			err:  fmt.Errorf("command failed: %w", pipeline.NewPartialError("partial", nil)),
			want: int(pipeline.ExitPartial),
		},
		{
			name: "deeply wrapped RunError preserves exit code",
			err:  fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", pipeline.NewError("deep", nil))),
			want: int(pipeline.ExitError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extractExitCode(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractExitCode_NilReturnsZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, extractExitCode(nil))
}

func TestExtractExitCode_GenericErrorReturnsOne(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, extractExitCode(errors.New("generic")))
}

func TestExtractExitCode_PartialErrorReturnsTwo(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2, extractExitCode(pipeline.NewPartialError("partial", nil)))
}

func TestExtractExitCode_WrappedGenericErrorReturnsOne(t *testing.T) {
	t.Parallel()

	// A generic error wrapped with fmt.Errorf (no RunError in the chain)
	// should still return ExitError (1).
	wrappedGeneric := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", errors.New("root")))
	assert.Equal(t, 1, extractExitCode(wrappedGeneric))
}
