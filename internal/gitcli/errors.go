package gitcli

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorKind names a stable failure category surfaced to callers.
type ErrorKind string

// Failure categories shared by the runner and the repository facade.
const (
	ErrorKindAuthenticationFailed    ErrorKind = ErrorKind("git_auth_failed")
	ErrorKindConnectionFailed        ErrorKind = ErrorKind("git_connection_failed")
	ErrorKindLocalChangesOverwritten ErrorKind = ErrorKind("git_local_overwrite")
	ErrorKindMergeConflict           ErrorKind = ErrorKind("git_pull_merge_conflict")
	ErrorKindPullOverwrite           ErrorKind = ErrorKind("git_pull_overwrite")
	ErrorKindPushRejected            ErrorKind = ErrorKind("git_push_failed")
	ErrorKindBranchUnmerged          ErrorKind = ErrorKind("git_delete_branch_unmerged")
	ErrorKindRemoteAlreadyExists     ErrorKind = ErrorKind("git_remote_already_exists")
	ErrorKindNotARepository          ErrorKind = ErrorKind("git_not_a_repository")
	ErrorKindRepositoryNotFound      ErrorKind = ErrorKind("git_repository_not_found")
	ErrorKindRemoteGone              ErrorKind = ErrorKind("git_remote_gone")
	ErrorKindGeneric                 ErrorKind = ErrorKind("git_error")
)

const (
	commandErrorTemplateConstant = "%s: %s"
	emptyStandardErrorConstant   = "git command failed"
)

// CommandError is a classified git failure that keeps the complete raw output.
type CommandError struct {
	Kind           ErrorKind
	Arguments      []string
	ExitCode       int
	StandardOutput string
	StandardError  string
}

// Error reports the failure kind with the trimmed standard error.
func (commandError *CommandError) Error() string {
	message := strings.TrimSpace(commandError.StandardError)
	if len(message) == 0 {
		message = emptyStandardErrorConstant
	}
	return fmt.Sprintf(commandErrorTemplateConstant, commandError.Kind, message)
}

// KindOf returns the classified kind of err, or an empty kind when err is not a CommandError.
func KindOf(err error) ErrorKind {
	var commandError *CommandError
	if errors.As(err, &commandError) {
		return commandError.Kind
	}
	return ErrorKind("")
}

// IsKind reports whether err is a CommandError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

type outputStream int

const (
	streamStandardError outputStream = iota
	streamStandardOutput
)

type classificationRule struct {
	pattern *regexp.Regexp
	stream  outputStream
	kind    ErrorKind
}

// Order matters: the first matching rule decides the kind.
var classificationRules = []classificationRule{
	{pattern: regexp.MustCompile(`fatal: could not read Username`), stream: streamStandardError, kind: ErrorKindAuthenticationFailed},
	{pattern: regexp.MustCompile(`HTTP Basic: Access denied`), stream: streamStandardError, kind: ErrorKindAuthenticationFailed},
	{pattern: regexp.MustCompile(`Permission denied \(publickey\)`), stream: streamStandardError, kind: ErrorKindAuthenticationFailed},
	{pattern: regexp.MustCompile(`Authentication failed for`), stream: streamStandardError, kind: ErrorKindAuthenticationFailed},
	{pattern: regexp.MustCompile(`Connection refused`), stream: streamStandardError, kind: ErrorKindConnectionFailed},
	{pattern: regexp.MustCompile(`Could not resolve host`), stream: streamStandardError, kind: ErrorKindConnectionFailed},
	{pattern: regexp.MustCompile(`commit your changes or stash`), stream: streamStandardError, kind: ErrorKindLocalChangesOverwritten},
	{pattern: regexp.MustCompile(`CONFLICT`), stream: streamStandardOutput, kind: ErrorKindMergeConflict},
	{pattern: regexp.MustCompile(`not fully merged`), stream: streamStandardError, kind: ErrorKindBranchUnmerged},
	{pattern: regexp.MustCompile(`remote .* already exists`), stream: streamStandardError, kind: ErrorKindRemoteAlreadyExists},
	{pattern: regexp.MustCompile(`does not appear to be a git repository`), stream: streamStandardError, kind: ErrorKindNotARepository},
	{pattern: regexp.MustCompile(`(?i)Repository not found`), stream: streamStandardError, kind: ErrorKindRepositoryNotFound},
}

// Classify maps raw failure output onto the operation-independent error taxonomy.
// Output that matches no rule is reported as ErrorKindGeneric.
func Classify(standardOutput string, standardError string) ErrorKind {
	for _, rule := range classificationRules {
		subject := standardError
		if rule.stream == streamStandardOutput {
			subject = standardOutput
		}
		if rule.pattern.MatchString(subject) {
			return rule.kind
		}
	}
	return ErrorKindGeneric
}
