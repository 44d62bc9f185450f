package repository

import (
	"context"
	"errors"
	"fmt"
)

const (
	commitOperationConstant             = "commit"
	stageOperationConstant              = "stage"
	revertOperationConstant             = "revert"
	checkoutOperationConstant           = "checkout"
	deleteBranchOperationConstant       = "delete branch"
	addRemoteOperationConstant          = "add remote"
	removeRemoteOperationConstant       = "remove remote"
	setUpstreamOperationConstant        = "set upstream"
	repositoryOperationConstant         = "repository"
	commitSubcommandConstant            = "commit"
	messageFlagConstant                 = "-m"
	configOverrideFlagConstant          = "-c"
	addSubcommandConstant               = "add"
	resetSubcommandConstant             = "reset"
	pathSeparatorFlagConstant           = "--"
	checkoutSubcommandConstant          = "checkout"
	createBranchFlagConstant            = "-b"
	branchSubcommandConstant            = "branch"
	deleteBranchFlagConstant            = "-d"
	forceDeleteBranchFlagConstant       = "-D"
	mergeSubcommandConstant             = "merge"
	abortFlagConstant                   = "--abort"
	remoteSubcommandConstant            = "remote"
	remoteAddActionConstant             = "add"
	remoteRemoveActionConstant          = "remove"
	setUpstreamToFlagConstant           = "--set-upstream-to"
	initSubcommandConstant              = "init"
	remoteBranchDeletionMessageConstant = "deleting remote branches is not supported"
	userNameOverrideTemplateConstant    = "user.name=%s"
	userEmailOverrideTemplateConstant   = "user.email=%s"
	unstageOperationConstant            = "unstage"
)

// ErrRemoteBranchDeletionUnsupported is returned by DeleteBranch for remote branches.
var ErrRemoteBranchDeletionUnsupported = errors.New(remoteBranchDeletionMessageConstant)

// RepositoryOptions identifies the working directory of an operation.
type RepositoryOptions struct {
	RepositoryPath string `validate:"required"`
}

// CommitOptions configures Commit. User, when set, applies to this commit only.
type CommitOptions struct {
	RepositoryPath string `validate:"required"`
	Message        string `validate:"required"`
	User           *Identity
}

// StageOptions configures Stage.
type StageOptions struct {
	RepositoryPath string   `validate:"required"`
	Files          []string `validate:"required,min=1,dive,required"`
}

// UnstageOptions configures Unstage. An empty File unstages everything.
type UnstageOptions struct {
	RepositoryPath string `validate:"required"`
	File           string
}

// FileOptions names one path in the repository.
type FileOptions struct {
	RepositoryPath string `validate:"required"`
	File           string `validate:"required"`
}

// CheckoutOptions configures CheckoutBranch.
type CheckoutOptions struct {
	RepositoryPath string `validate:"required"`
	Branch         string `validate:"required,startsnotwith=-"`
	Create         bool
}

// DeleteBranchOptions configures DeleteBranch.
type DeleteBranchOptions struct {
	RepositoryPath string `validate:"required"`
	Branch         string `validate:"required,startsnotwith=-"`
	Remote         bool
	Force          bool
}

// AddRemoteOptions configures AddRemote.
type AddRemoteOptions struct {
	RepositoryPath string `validate:"required"`
	Name           string `validate:"required,startsnotwith=-"`
	URL            string `validate:"required,startsnotwith=-"`
}

// RemoveRemoteOptions configures RemoveRemote.
type RemoveRemoteOptions struct {
	RepositoryPath string `validate:"required"`
	Name           string `validate:"required,startsnotwith=-"`
}

// SetUpstreamOptions configures SetUpstream.
type SetUpstreamOptions struct {
	RepositoryPath string `validate:"required"`
	RemoteBranch   string `validate:"required,startsnotwith=-"`
}

// InitRepository creates an empty repository in RepositoryPath.
func (service *Service) InitRepository(executionContext context.Context, options RepositoryOptions) error {
	if validationError := service.validateOptions(repositoryOperationConstant, options); validationError != nil {
		return validationError
	}
	_, initError := service.run(executionContext, options.RepositoryPath, initSubcommandConstant)
	return initError
}

// Commit records staged changes. A supplied identity is passed as one-shot configuration
// overrides and never written to any git configuration file.
func (service *Service) Commit(executionContext context.Context, options CommitOptions) error {
	if validationError := service.validateOptions(commitOperationConstant, options); validationError != nil {
		return validationError
	}

	arguments := []string{}
	if options.User != nil && len(options.User.Name) > 0 && len(options.User.Email) > 0 {
		arguments = append(arguments,
			configOverrideFlagConstant, fmt.Sprintf(userEmailOverrideTemplateConstant, options.User.Email),
			configOverrideFlagConstant, fmt.Sprintf(userNameOverrideTemplateConstant, options.User.Name),
		)
	}
	arguments = append(arguments, commitSubcommandConstant, messageFlagConstant, options.Message)

	_, commitError := service.run(executionContext, options.RepositoryPath, arguments...)
	return commitError
}

// Stage adds the given paths to the index.
func (service *Service) Stage(executionContext context.Context, options StageOptions) error {
	if validationError := service.validateOptions(stageOperationConstant, options); validationError != nil {
		return validationError
	}
	arguments := append([]string{addSubcommandConstant, pathSeparatorFlagConstant}, options.Files...)
	_, stageError := service.run(executionContext, options.RepositoryPath, arguments...)
	return stageError
}

// Unstage removes File, or every path when File is empty, from the index.
func (service *Service) Unstage(executionContext context.Context, options UnstageOptions) error {
	if validationError := service.validateOptions(unstageOperationConstant, options); validationError != nil {
		return validationError
	}
	arguments := []string{resetSubcommandConstant, pathSeparatorFlagConstant}
	if len(options.File) > 0 {
		arguments = append(arguments, options.File)
	}
	_, unstageError := service.run(executionContext, options.RepositoryPath, arguments...)
	return unstageError
}

// Revert discards working tree changes to File.
func (service *Service) Revert(executionContext context.Context, options FileOptions) error {
	if validationError := service.validateOptions(revertOperationConstant, options); validationError != nil {
		return validationError
	}
	_, revertError := service.run(executionContext, options.RepositoryPath, checkoutSubcommandConstant, pathSeparatorFlagConstant, options.File)
	return revertError
}

// CheckoutBranch switches to Branch, creating it first when Create is set.
func (service *Service) CheckoutBranch(executionContext context.Context, options CheckoutOptions) error {
	if validationError := service.validateOptions(checkoutOperationConstant, options); validationError != nil {
		return validationError
	}
	arguments := []string{checkoutSubcommandConstant}
	if options.Create {
		arguments = append(arguments, createBranchFlagConstant)
	}
	arguments = append(arguments, options.Branch)
	_, checkoutError := service.run(executionContext, options.RepositoryPath, arguments...)
	return checkoutError
}

// DeleteBranch deletes a local branch. Remote branches are rejected before git is started.
func (service *Service) DeleteBranch(executionContext context.Context, options DeleteBranchOptions) error {
	if options.Remote {
		return ErrRemoteBranchDeletionUnsupported
	}
	if validationError := service.validateOptions(deleteBranchOperationConstant, options); validationError != nil {
		return validationError
	}
	deleteFlag := deleteBranchFlagConstant
	if options.Force {
		deleteFlag = forceDeleteBranchFlagConstant
	}
	_, deleteError := service.run(executionContext, options.RepositoryPath, branchSubcommandConstant, deleteFlag, options.Branch)
	return deleteError
}

// AbortMerge abandons an in-progress merge.
func (service *Service) AbortMerge(executionContext context.Context, options RepositoryOptions) error {
	if validationError := service.validateOptions(repositoryOperationConstant, options); validationError != nil {
		return validationError
	}
	_, abortError := service.run(executionContext, options.RepositoryPath, mergeSubcommandConstant, abortFlagConstant)
	return abortError
}

// AddRemote registers a new remote after checking that URL is a valid endpoint.
func (service *Service) AddRemote(executionContext context.Context, options AddRemoteOptions) error {
	if validationError := service.validateOptions(addRemoteOperationConstant, options); validationError != nil {
		return validationError
	}
	if urlError := validateRemoteURL(options.URL); urlError != nil {
		return InvalidOptionsError{Operation: addRemoteOperationConstant, Cause: urlError}
	}
	_, addError := service.run(executionContext, options.RepositoryPath, remoteSubcommandConstant, remoteAddActionConstant, options.Name, options.URL)
	return addError
}

// RemoveRemote deletes the named remote.
func (service *Service) RemoveRemote(executionContext context.Context, options RemoveRemoteOptions) error {
	if validationError := service.validateOptions(removeRemoteOperationConstant, options); validationError != nil {
		return validationError
	}
	_, removeError := service.run(executionContext, options.RepositoryPath, remoteSubcommandConstant, remoteRemoveActionConstant, options.Name)
	return removeError
}

// SetUpstream makes RemoteBranch the tracking branch of the current branch.
func (service *Service) SetUpstream(executionContext context.Context, options SetUpstreamOptions) error {
	if validationError := service.validateOptions(setUpstreamOperationConstant, options); validationError != nil {
		return validationError
	}
	_, upstreamError := service.run(executionContext, options.RepositoryPath, branchSubcommandConstant, setUpstreamToFlagConstant, options.RemoteBranch)
	return upstreamError
}
