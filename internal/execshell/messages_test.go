package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageSkipsConfigurationOverrides(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"-c", "credential.helper=", "fetch", "origin"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	require.Equal(t, "Fetching from origin in /workspace/repo", formatter.BuildStartedMessage(command))
}

func TestBuildSuccessMessageForCommitQuotesMessage(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"-c", "credential.helper=", "-c", "user.name=Ada", "commit", "-m", "initial import"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	require.Equal(t, `Committed "initial import" in /workspace/repo`, formatter.BuildSuccessMessage(command))
}

func TestBuildFailureMessageIncludesExitCodeAndStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"branch", "-d", "feature"}},
	}

	message := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "error: branch not fully merged\n"})

	require.Equal(t, "Failed to update branches (delete feature) in current directory (exit code 1: error: branch not fully merged)", message)
}

func TestBuildMessageFallsBackToGenericLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"show", "HEAD:README.md"}, WorkingDirectory: "/workspace/repo"},
	}

	require.Equal(t, "Running git show HEAD:README.md (in /workspace/repo)", formatter.BuildStartedMessage(command))
	require.Equal(t, "git show HEAD:README.md (in /workspace/repo) failed: boom", formatter.BuildExecutionFailureMessage(command, errors.New("boom")))
}

func TestSplitGitSubcommand(t *testing.T) {
	testCases := []struct {
		name               string
		arguments          []string
		expectedSubcommand string
		expectedRemaining  []string
	}{
		{name: "plain", arguments: []string{"status", "--porcelain"}, expectedSubcommand: "status", expectedRemaining: []string{"--porcelain"}},
		{name: "overrides", arguments: []string{"-c", "a=b", "-c", "c=d", "push", "origin"}, expectedSubcommand: "push", expectedRemaining: []string{"origin"}},
		{name: "version", arguments: []string{"-c", "a=", "--version"}, expectedSubcommand: "--version", expectedRemaining: []string{}},
		{name: "empty", arguments: nil, expectedSubcommand: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			subcommand, remaining := SplitGitSubcommand(testCase.arguments)
			require.Equal(t, testCase.expectedSubcommand, subcommand)
			if testCase.expectedRemaining != nil {
				require.Equal(t, testCase.expectedRemaining, remaining)
			}
		})
	}
}
