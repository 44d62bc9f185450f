package execshell

import (
	"context"
	"time"
)

// CommandName identifies an executable invoked through the executor.
type CommandName string

// CommandGit names the git executable resolved from PATH.
const CommandGit CommandName = CommandName("git")

// CommandDetails describes the arguments and process environment of a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples an executable with the details of one invocation.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the raw output of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
	Duration       time.Duration
}

// CommandRunner executes a shell command and reports its raw result.
// A nonzero exit code is not an error at this level; only failures to start or wait are.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}
