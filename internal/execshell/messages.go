package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	exitCodeSuffixTemplateConstant          = " (exit code %d%s)"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	configurationOverrideFlagConstant       = "-c"
	flagPrefixConstant                      = "-"
)

const (
	gitCloneSubcommandNameConstant    = "clone"
	gitFetchSubcommandNameConstant    = "fetch"
	gitPullSubcommandNameConstant     = "pull"
	gitPushSubcommandNameConstant     = "push"
	gitCommitSubcommandNameConstant   = "commit"
	gitAddSubcommandNameConstant      = "add"
	gitResetSubcommandNameConstant    = "reset"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitBranchSubcommandNameConstant   = "branch"
	gitRemoteSubcommandNameConstant   = "remote"
	gitStatusSubcommandNameConstant   = "status"
	gitLsFilesSubcommandNameConstant  = "ls-files"
	gitRevListSubcommandNameConstant  = "rev-list"
	gitLogSubcommandNameConstant      = "log"
	gitMergeSubcommandNameConstant    = "merge"
	gitInitSubcommandNameConstant     = "init"
	gitVersionFlagConstant            = "--version"
	gitRemoteAddActionConstant        = "add"
	gitRemoteRemoveActionConstant     = "remove"
	gitBranchDeleteFlagConstant       = "-d"
	gitBranchForceDeleteFlagConstant  = "-D"
	gitBranchUpstreamFlagConstant     = "--set-upstream-to"
	gitCheckoutCreateFlagConstant     = "-b"
	gitMergeAbortFlagConstant         = "--abort"
	gitMessageFlagConstant            = "-m"
)

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// Templates receive the subject description first and the working directory second.
var gitStageTemplates = map[string]stageTemplates{
	gitCloneSubcommandNameConstant: {
		start:            "Cloning %s into %s",
		success:          "Cloned %s into %s",
		failure:          "Failed to clone %s into %s",
		executionFailure: "Unable to clone %s into %s",
	},
	gitFetchSubcommandNameConstant: {
		start:            "Fetching from %s in %s",
		success:          "Fetched from %s in %s",
		failure:          "Failed to fetch from %s in %s",
		executionFailure: "Unable to fetch from %s in %s",
	},
	gitPullSubcommandNameConstant: {
		start:            "Pulling %s in %s",
		success:          "Pulled %s in %s",
		failure:          "Failed to pull %s in %s",
		executionFailure: "Unable to pull %s in %s",
	},
	gitPushSubcommandNameConstant: {
		start:            "Pushing to %s from %s",
		success:          "Pushed to %s from %s",
		failure:          "Failed to push to %s from %s",
		executionFailure: "Unable to push to %s from %s",
	},
	gitCommitSubcommandNameConstant: {
		start:            "Committing %s in %s",
		success:          "Committed %s in %s",
		failure:          "Failed to commit %s in %s",
		executionFailure: "Unable to commit %s in %s",
	},
	gitAddSubcommandNameConstant: {
		start:            "Staging %s in %s",
		success:          "Staged %s in %s",
		failure:          "Failed to stage %s in %s",
		executionFailure: "Unable to stage %s in %s",
	},
	gitResetSubcommandNameConstant: {
		start:            "Unstaging %s in %s",
		success:          "Unstaged %s in %s",
		failure:          "Failed to unstage %s in %s",
		executionFailure: "Unable to unstage %s in %s",
	},
	gitCheckoutSubcommandNameConstant: {
		start:            "Checking out %s in %s",
		success:          "Checked out %s in %s",
		failure:          "Failed to check out %s in %s",
		executionFailure: "Unable to check out %s in %s",
	},
	gitBranchSubcommandNameConstant: {
		start:            "Updating branches (%s) in %s",
		success:          "Updated branches (%s) in %s",
		failure:          "Failed to update branches (%s) in %s",
		executionFailure: "Unable to update branches (%s) in %s",
	},
	gitRemoteSubcommandNameConstant: {
		start:            "Managing remotes (%s) in %s",
		success:          "Managed remotes (%s) in %s",
		failure:          "Failed to manage remotes (%s) in %s",
		executionFailure: "Unable to manage remotes (%s) in %s",
	},
	gitStatusSubcommandNameConstant: {
		start:            "Reviewing %s in %s",
		success:          "Collected %s for %s",
		failure:          "Failed to review %s in %s",
		executionFailure: "Unable to review %s in %s",
	},
	gitLsFilesSubcommandNameConstant: {
		start:            "Listing %s in %s",
		success:          "Listed %s in %s",
		failure:          "Failed to list %s in %s",
		executionFailure: "Unable to list %s in %s",
	},
	gitRevListSubcommandNameConstant: {
		start:            "Counting commits for %s in %s",
		success:          "Counted commits for %s in %s",
		failure:          "Failed to count commits for %s in %s",
		executionFailure: "Unable to count commits for %s in %s",
	},
	gitLogSubcommandNameConstant: {
		start:            "Reading %s in %s",
		success:          "Read %s in %s",
		failure:          "Failed to read %s in %s",
		executionFailure: "Unable to read %s in %s",
	},
	gitMergeSubcommandNameConstant: {
		start:            "Running merge %s in %s",
		success:          "Finished merge %s in %s",
		failure:          "Failed to run merge %s in %s",
		executionFailure: "Unable to run merge %s in %s",
	},
	gitInitSubcommandNameConstant: {
		start:            "Initializing %s in %s",
		success:          "Initialized %s in %s",
		failure:          "Failed to initialize %s in %s",
		executionFailure: "Unable to initialize %s in %s",
	},
}

// CommandMessageFormatter builds human-readable log messages for git invocations.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage describes a command that exited with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage describes a command that exited with a nonzero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage describes a command that could not run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	subcommand, subcommandArguments := SplitGitSubcommand(command.Details.Arguments)
	templates, known := gitStageTemplates[subcommand]
	if !known {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subject := formatter.describeSubject(subcommand, subcommandArguments)
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, workingDirectory) + fmt.Sprintf(exitCodeSuffixTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, subject, workingDirectory) + fmt.Sprintf(standardErrorSuffixTemplateConstant, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeSubject(subcommand string, arguments []string) string {
	positional := positionalArguments(arguments)
	switch subcommand {
	case gitCloneSubcommandNameConstant, gitFetchSubcommandNameConstant, gitPushSubcommandNameConstant:
		return formatter.ensureValue(strings.Join(positional, commandArgumentsJoinSeparatorConstant))
	case gitPullSubcommandNameConstant:
		if len(positional) == 0 {
			return "tracked branch"
		}
		return strings.Join(positional, commandArgumentsJoinSeparatorConstant)
	case gitCommitSubcommandNameConstant:
		return fmt.Sprintf("%q", findFlagValue(arguments, gitMessageFlagConstant))
	case gitAddSubcommandNameConstant, gitResetSubcommandNameConstant:
		if len(positional) == 0 {
			return "all files"
		}
		return strings.Join(positional, commandArgumentsJoinSeparatorConstant)
	case gitCheckoutSubcommandNameConstant:
		if containsArgument(arguments, gitCheckoutCreateFlagConstant) {
			return "new branch " + formatter.ensureValue(firstOrEmpty(positional))
		}
		return formatter.ensureValue(firstOrEmpty(positional))
	case gitBranchSubcommandNameConstant:
		switch {
		case containsArgument(arguments, gitBranchDeleteFlagConstant):
			return "delete " + formatter.ensureValue(firstOrEmpty(positional))
		case containsArgument(arguments, gitBranchForceDeleteFlagConstant):
			return "force delete " + formatter.ensureValue(firstOrEmpty(positional))
		case containsArgument(arguments, gitBranchUpstreamFlagConstant):
			return "set upstream " + formatter.ensureValue(findFlagValue(arguments, gitBranchUpstreamFlagConstant))
		default:
			return "list"
		}
	case gitRemoteSubcommandNameConstant:
		if len(positional) == 0 {
			return "list"
		}
		switch positional[0] {
		case gitRemoteAddActionConstant, gitRemoteRemoveActionConstant:
			return positional[0] + commandArgumentsJoinSeparatorConstant + formatter.ensureValue(firstOrEmpty(positional[1:]))
		}
		return positional[0]
	case gitStatusSubcommandNameConstant:
		return "working tree status"
	case gitLsFilesSubcommandNameConstant:
		return "tracked and untracked files"
	case gitRevListSubcommandNameConstant:
		return strings.Join(positional, commandArgumentsJoinSeparatorConstant)
	case gitLogSubcommandNameConstant:
		return "commit history"
	case gitMergeSubcommandNameConstant:
		if containsArgument(arguments, gitMergeAbortFlagConstant) {
			return "abort"
		}
		return strings.Join(positional, commandArgumentsJoinSeparatorConstant)
	case gitInitSubcommandNameConstant:
		return "repository"
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

// SplitGitSubcommand skips leading "-c key=value" overrides and returns the git subcommand
// with the arguments that follow it. "--version" is reported as its own subcommand.
func SplitGitSubcommand(arguments []string) (string, []string) {
	index := 0
	for index < len(arguments) {
		if arguments[index] == configurationOverrideFlagConstant {
			index += 2
			continue
		}
		break
	}
	if index >= len(arguments) {
		return emptyStringConstant, nil
	}
	if arguments[index] == gitVersionFlagConstant {
		return gitVersionFlagConstant, arguments[index+1:]
	}
	return arguments[index], arguments[index+1:]
}

func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	skipNext := false
	for _, argument := range arguments {
		if skipNext {
			skipNext = false
			continue
		}
		if argument == gitMessageFlagConstant || argument == gitBranchUpstreamFlagConstant {
			skipNext = true
			continue
		}
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, argument)
	}
	return positional
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if argument == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if arguments[index] == flag {
			return arguments[index+1]
		}
	}
	return emptyStringConstant
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return emptyStringConstant
	}
	return values[0]
}
