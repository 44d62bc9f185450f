package repository

import (
	"context"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/temirov/gitbridge/internal/credentials"
	"github.com/temirov/gitbridge/internal/gitcli"
)

const (
	cloneOperationConstant      = "clone"
	fetchOperationConstant      = "fetch"
	pullOperationConstant       = "pull"
	pushOperationConstant       = "push"
	cloneSubcommandConstant     = "clone"
	fetchSubcommandConstant     = "fetch"
	pullSubcommandConstant      = "pull"
	pushSubcommandConstant      = "push"
	originFlagConstant          = "-o"
	branchSelectionFlagConstant = "-b"
	currentDirectoryConstant    = "."
	setUpstreamFlagConstant     = "-u"
	porcelainFlagConstant       = "--porcelain"
	headRefspecPrefixConstant   = "HEAD:"
	conflictMarkerConstant      = "CONFLICT"
	pullOverwriteMarkerConstant = "Please commit your changes or stash"
)

var pushRejectedPattern = regexp.MustCompile(`(?m)^!.*non-fast-forward`)

// CloneOptions configures Clone.
type CloneOptions struct {
	URL            string `validate:"required,startsnotwith=-"`
	RepositoryPath string `validate:"required"`
	RemoteName     string `validate:"omitempty,startsnotwith=-"`
	Branch         string `validate:"omitempty,startsnotwith=-"`
	Auth           *credentials.AuthSpec
}

// RemoteOptions configures Fetch.
type RemoteOptions struct {
	RepositoryPath string `validate:"required"`
	Remote         string `validate:"required,startsnotwith=-"`
	Auth           *credentials.AuthSpec
}

// PullOptions configures Pull. Remote and branch are only passed to git when both are set.
type PullOptions struct {
	RepositoryPath string `validate:"required"`
	Remote         string `validate:"omitempty,startsnotwith=-"`
	Branch         string `validate:"omitempty,startsnotwith=-"`
	Auth           *credentials.AuthSpec
}

// PushOptions configures Push.
type PushOptions struct {
	RepositoryPath string `validate:"required"`
	Remote         string `validate:"required,startsnotwith=-"`
	Branch         string `validate:"omitempty,startsnotwith=-"`
	SetUpstream    bool
	Auth           *credentials.AuthSpec
}

// Clone clones URL into RepositoryPath, optionally naming the remote and selecting a branch.
func (service *Service) Clone(executionContext context.Context, options CloneOptions) error {
	if validationError := service.validateOptions(cloneOperationConstant, options); validationError != nil {
		return validationError
	}
	if urlError := validateRemoteURL(options.URL); urlError != nil {
		return InvalidOptionsError{Operation: cloneOperationConstant, Cause: urlError}
	}

	arguments := []string{cloneSubcommandConstant}
	if len(options.RemoteName) > 0 {
		arguments = append(arguments, originFlagConstant, options.RemoteName)
	}
	if len(options.Branch) > 0 {
		arguments = append(arguments, branchSelectionFlagConstant, options.Branch)
	}
	arguments = append(arguments, pathSeparatorFlagConstant, options.URL, currentDirectoryConstant)

	_, cloneError := service.runRemote(executionContext, cloneOperationConstant, options.RepositoryPath, options.Auth, arguments...)
	return cloneError
}

// Fetch fetches from the named remote.
func (service *Service) Fetch(executionContext context.Context, options RemoteOptions) error {
	if validationError := service.validateOptions(fetchOperationConstant, options); validationError != nil {
		return validationError
	}
	_, fetchError := service.runRemote(executionContext, fetchOperationConstant, options.RepositoryPath, options.Auth, fetchSubcommandConstant, options.Remote)
	return fetchError
}

// Pull merges remote changes. Conflicts in the merge output become ErrorKindMergeConflict and
// local changes blocking the merge become ErrorKindPullOverwrite.
func (service *Service) Pull(executionContext context.Context, options PullOptions) error {
	if validationError := service.validateOptions(pullOperationConstant, options); validationError != nil {
		return validationError
	}

	arguments := []string{pullSubcommandConstant}
	if len(options.Remote) > 0 && len(options.Branch) > 0 {
		arguments = append(arguments, options.Remote, options.Branch)
	}

	_, pullError := service.runRemote(executionContext, pullOperationConstant, options.RepositoryPath, options.Auth, arguments...)
	if pullError == nil {
		return nil
	}
	return service.reclassify(pullOperationConstant, pullError, func(commandError *gitcli.CommandError) (gitcli.ErrorKind, bool) {
		switch {
		case strings.Contains(commandError.StandardOutput, conflictMarkerConstant):
			return gitcli.ErrorKindMergeConflict, true
		case strings.Contains(commandError.StandardError, pullOverwriteMarkerConstant):
			return gitcli.ErrorKindPullOverwrite, true
		default:
			return commandError.Kind, false
		}
	})
}

// Push publishes HEAD to Branch on Remote, or pushes the configured default when no branch
// is given. The upstream flag is only added alongside an explicit branch.
func (service *Service) Push(executionContext context.Context, options PushOptions) error {
	if validationError := service.validateOptions(pushOperationConstant, options); validationError != nil {
		return validationError
	}

	arguments := []string{pushSubcommandConstant}
	if len(options.Branch) > 0 {
		arguments = append(arguments, lo.Ternary(options.SetUpstream, []string{setUpstreamFlagConstant}, []string{})...)
		arguments = append(arguments, options.Remote, headRefspecPrefixConstant+options.Branch)
	} else {
		arguments = append(arguments, options.Remote)
	}
	arguments = append(arguments, porcelainFlagConstant)

	_, pushError := service.runRemote(executionContext, pushOperationConstant, options.RepositoryPath, options.Auth, arguments...)
	if pushError == nil {
		return nil
	}
	return service.reclassify(pushOperationConstant, pushError, func(commandError *gitcli.CommandError) (gitcli.ErrorKind, bool) {
		if commandError.Kind == gitcli.ErrorKindGeneric && pushRejectedPattern.MatchString(commandError.StandardOutput) {
			return gitcli.ErrorKindPushRejected, true
		}
		return commandError.Kind, false
	})
}
