package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand is a test helper that runs the CLI with the given args and
// captures both stdout and stderr.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code)
}

// ---------------------------------------------------------------------------
// Help output
// ---------------------------------------------------------------------------

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"watch", "run", "plan", "doctor", "version", "completion"} {
		assert.Contains(t, stdout, sub, "help should mention %q subcommand", sub)
	}

	for _, flag := range []string{
		"--config", "--log-level", "--log-format", "--no-color", "--quiet",
		"--workdir", "--code-dir", "--images-dir", "--config-dir", "--active-config", "--theme", "--renderer",
	} {
		assert.Contains(t, stdout, flag, "help should mention %q flag", flag)
	}

	assert.Contains(t, stdout, "WARNING")
}

func TestWatchCommand_HelpListsPassFlags(t *testing.T) {
	stdout, _, err := executeCommand("watch", "--help")
	require.NoError(t, err)

	for _, flag := range []string{"--pause-min", "--pause-max", "--backup-active-config", "--debounce"} {
		assert.Contains(t, stdout, flag)
	}
}

// ---------------------------------------------------------------------------
// Flag and configuration errors → exit code 2
// ---------------------------------------------------------------------------

func TestRootCommand_UnknownFlag(t *testing.T) {
	_, _, err := executeCommand("--nonexistent")
	require.Error(t, err)
	requireExitCode(t, err, 2)
}

func TestRootCommand_SilenceErrors(t *testing.T) {
	_, stderr, err := executeCommand("--nonexistent")
	require.Error(t, err)
	assert.Empty(t, stderr, "cobra should not print errors to stderr (SilenceErrors)")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	_, _, err := executeCommand("--config", "/nonexistent/path.yaml", "plan")
	require.Error(t, err)
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestRootCommand_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"log level", []string{"--log-level", "trace", "plan"}, "invalid log level"},
		{"log format", []string{"--log-format", "xml", "plan"}, "invalid log format"},
		{"theme", []string{"--theme", "dracula", "plan"}, "invalid theme"},
		{"pause range", []string{"run", "--pause-min", "5s", "--pause-max", "1s"}, "invalid pause range"},
		{"plan format", []string{"--workdir", "/tmp", "plan", "-o", "xml"}, "invalid output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(tt.args...)
			require.Error(t, err)
			requireExitCode(t, err, 2)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// execute
// ---------------------------------------------------------------------------

func TestExecute_Success(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(new(bytes.Buffer))

	var stderr bytes.Buffer

	assert.Equal(t, 0, execute(cmd, &stderr))
	assert.Empty(t, stderr.String())
}

func TestExecute_PrintsErrorAndMapsExitCode(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--log-level", "trace", "plan"})
	cmd.SetOut(new(bytes.Buffer))

	var stderr bytes.Buffer

	assert.Equal(t, 2, execute(cmd, &stderr))
	assert.Contains(t, stderr.String(), "\nERROR: ")
	assert.Contains(t, stderr.String(), "invalid log level")
}

func TestExecute_PlainErrorExitsOne(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"version", "extra"})
	cmd.SetOut(new(bytes.Buffer))

	var stderr bytes.Buffer

	assert.Equal(t, 1, execute(cmd, &stderr))
	assert.Contains(t, stderr.String(), "ERROR:")
}

// ---------------------------------------------------------------------------
// ExitError
// ---------------------------------------------------------------------------

func TestExitError_ErrorWithMessage(t *testing.T) {
	err := &ExitError{Code: 1, Err: assert.AnError}
	assert.Contains(t, err.Error(), assert.AnError.Error())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestExitError_ErrorWithoutMessage(t *testing.T) {
	err := &ExitError{Code: 42}
	assert.Equal(t, "exit code 42", err.Error())
	assert.Nil(t, err.Unwrap())
}

// ---------------------------------------------------------------------------
// Completion
// ---------------------------------------------------------------------------

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCommand("completion", shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, "carbonwatch")
		})
	}
}

func TestCompletionCommand_InvalidShell(t *testing.T) {
	_, _, err := executeCommand("completion", "tcsh")
	require.Error(t, err)
}

func TestThemeFlagCompletion(t *testing.T) {
	stdout, _, err := executeCommand(cobra.ShellCompRequestCmd, "--theme", "")
	require.NoError(t, err)

	for _, theme := range []string{"onelight-hack", "nightowl-hack", "oceanicnext-hack"} {
		assert.Contains(t, stdout, theme)
	}
}
