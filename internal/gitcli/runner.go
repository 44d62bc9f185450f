package gitcli

import (
	"context"
	"errors"

	"github.com/temirov/gitbridge/internal/execshell"
)

const (
	configurationOverrideFlagConstant = "-c"
	credentialHelperResetAssignment   = "credential.helper="
	gitExecutorMissingMessageConstant = "git executor not configured"
	gitTerminalPromptEnvironmentName  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValue    = "0"
)

// ErrGitExecutorNotConfigured indicates the runner was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor is the subset of execshell.ShellExecutor the runner depends on.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Invocation describes one git call.
type Invocation struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// Runner spawns one git process per call and classifies failures.
type Runner struct {
	executor GitExecutor
}

// NewRunner constructs a Runner around the provided executor.
func NewRunner(executor GitExecutor) (*Runner, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Runner{executor: executor}, nil
}

// Run executes git once and returns its standard output.
// Nonzero exits become *CommandError carrying the raw output; spawn failures are returned unchanged.
func (runner *Runner) Run(executionContext context.Context, invocation Invocation) (string, error) {
	arguments := make([]string, 0, len(invocation.Arguments)+2)
	arguments = append(arguments, configurationOverrideFlagConstant, credentialHelperResetAssignment)
	arguments = append(arguments, invocation.Arguments...)

	environment := map[string]string{gitTerminalPromptEnvironmentName: gitTerminalPromptDisabledValue}
	for environmentKey, environmentValue := range invocation.EnvironmentVariables {
		environment[environmentKey] = environmentValue
	}

	executionResult, executionError := runner.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     invocation.WorkingDirectory,
		EnvironmentVariables: environment,
	})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) {
			return "", &CommandError{
				Kind:           Classify(failedError.Result.StandardOutput, failedError.Result.StandardError),
				Arguments:      append([]string{}, invocation.Arguments...),
				ExitCode:       failedError.Result.ExitCode,
				StandardOutput: failedError.Result.StandardOutput,
				StandardError:  failedError.Result.StandardError,
			}
		}
		return "", executionError
	}

	return executionResult.StandardOutput, nil
}
