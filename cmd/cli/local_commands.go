package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/gitbridge/internal/repository"
)

const (
	initCommandUseConstant           = "init"
	initCommandShortConstant         = "Create an empty repository"
	commitCommandUseConstant         = "commit"
	commitCommandShortConstant       = "Record staged changes"
	messageFlagNameConstant          = "message"
	messageFlagShorthandConstant     = "m"
	messageFlagUsageConstant         = "Commit message."
	userNameFlagNameConstant         = "user-name"
	userNameFlagUsageConstant        = "Author name for this commit only."
	userEmailFlagNameConstant        = "user-email"
	userEmailFlagUsageConstant       = "Author email for this commit only."
	stageCommandUseConstant          = "stage <path>..."
	stageCommandShortConstant        = "Add paths to the index"
	unstageCommandUseConstant        = "unstage [path]"
	unstageCommandShortConstant      = "Remove a path, or everything, from the index"
	revertCommandUseConstant         = "revert <path>"
	revertCommandShortConstant       = "Discard working tree changes to a path"
	checkoutCommandUseConstant       = "checkout <branch>"
	checkoutCommandShortConstant     = "Switch branches"
	createFlagNameConstant           = "create"
	createFlagUsageConstant          = "Create the branch before switching."
	deleteBranchCommandUseConstant   = "delete-branch <branch>"
	deleteBranchCommandShortConstant = "Delete a local branch"
	deleteRemoteFlagUsageConstant    = "Treat the branch as remote-tracking (rejected)."
	forceFlagNameConstant            = "force"
	forceFlagUsageConstant           = "Delete even when the branch is not merged."
	abortMergeCommandUseConstant     = "abort-merge"
	abortMergeCommandShortConstant   = "Abort an in-progress merge"
	remoteAddCommandUseConstant      = "remote-add <name> <url>"
	remoteAddCommandShortConstant    = "Add a remote"
	remoteRemoveCommandUseConstant   = "remote-remove <name>"
	remoteRemoveCommandShortConstant = "Remove a remote"
	setUpstreamCommandUseConstant    = "set-upstream <remote-branch>"
	setUpstreamCommandShortConstant  = "Set the upstream of the current branch"
	remoteAddArgumentCountConstant   = 2
	maximumUnstageArgumentsConstant  = 1
)

func (application *Application) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   initCommandUseConstant,
		Short: initCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.InitRepository(executionContext, repository.RepositoryOptions{RepositoryPath: repositoryPath})
			})
		},
	}
}

func (application *Application) newCommitCommand() *cobra.Command {
	var message, userName, userEmail string
	commitCommand := &cobra.Command{
		Use:   commitCommandUseConstant,
		Short: commitCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			options := repository.CommitOptions{Message: message}
			if len(strings.TrimSpace(userName)) > 0 || len(strings.TrimSpace(userEmail)) > 0 {
				options.User = &repository.Identity{Name: userName, Email: userEmail}
			}
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				options.RepositoryPath = repositoryPath
				return service.Commit(executionContext, options)
			})
		},
	}
	commitCommand.Flags().StringVarP(&message, messageFlagNameConstant, messageFlagShorthandConstant, "", messageFlagUsageConstant)
	commitCommand.Flags().StringVar(&userName, userNameFlagNameConstant, "", userNameFlagUsageConstant)
	commitCommand.Flags().StringVar(&userEmail, userEmailFlagNameConstant, "", userEmailFlagUsageConstant)
	return commitCommand
}

func (application *Application) newStageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   stageCommandUseConstant,
		Short: stageCommandShortConstant,
		Args:  cobra.MinimumNArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.Stage(executionContext, repository.StageOptions{RepositoryPath: repositoryPath, Files: arguments})
			})
		},
	}
}

func (application *Application) newUnstageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   unstageCommandUseConstant,
		Short: unstageCommandShortConstant,
		Args:  cobra.MaximumNArgs(maximumUnstageArgumentsConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			options := repository.UnstageOptions{}
			if len(arguments) > 0 {
				options.File = arguments[0]
			}
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				options.RepositoryPath = repositoryPath
				return service.Unstage(executionContext, options)
			})
		},
	}
}

func (application *Application) newRevertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   revertCommandUseConstant,
		Short: revertCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.Revert(executionContext, repository.FileOptions{RepositoryPath: repositoryPath, File: arguments[0]})
			})
		},
	}
}

func (application *Application) newCheckoutCommand() *cobra.Command {
	var create bool
	checkoutCommand := &cobra.Command{
		Use:   checkoutCommandUseConstant,
		Short: checkoutCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.CheckoutBranch(executionContext, repository.CheckoutOptions{RepositoryPath: repositoryPath, Branch: arguments[0], Create: create})
			})
		},
	}
	checkoutCommand.Flags().BoolVar(&create, createFlagNameConstant, false, createFlagUsageConstant)
	return checkoutCommand
}

func (application *Application) newDeleteBranchCommand() *cobra.Command {
	var remote, force bool
	deleteCommand := &cobra.Command{
		Use:   deleteBranchCommandUseConstant,
		Short: deleteBranchCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.DeleteBranch(executionContext, repository.DeleteBranchOptions{RepositoryPath: repositoryPath, Branch: arguments[0], Remote: remote, Force: force})
			})
		},
	}
	deleteCommand.Flags().BoolVar(&remote, remoteFlagNameConstant, false, deleteRemoteFlagUsageConstant)
	deleteCommand.Flags().BoolVar(&force, forceFlagNameConstant, false, forceFlagUsageConstant)
	return deleteCommand
}

func (application *Application) newAbortMergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   abortMergeCommandUseConstant,
		Short: abortMergeCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.AbortMerge(executionContext, repository.RepositoryOptions{RepositoryPath: repositoryPath})
			})
		},
	}
}

func (application *Application) newRemoteAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   remoteAddCommandUseConstant,
		Short: remoteAddCommandShortConstant,
		Args:  cobra.ExactArgs(remoteAddArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.AddRemote(executionContext, repository.AddRemoteOptions{RepositoryPath: repositoryPath, Name: arguments[0], URL: arguments[1]})
			})
		},
	}
}

func (application *Application) newRemoteRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   remoteRemoveCommandUseConstant,
		Short: remoteRemoveCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.RemoveRemote(executionContext, repository.RemoveRemoteOptions{RepositoryPath: repositoryPath, Name: arguments[0]})
			})
		},
	}
}

func (application *Application) newSetUpstreamCommand() *cobra.Command {
	return &cobra.Command{
		Use:   setUpstreamCommandUseConstant,
		Short: setUpstreamCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.SetUpstream(executionContext, repository.SetUpstreamOptions{RepositoryPath: repositoryPath, RemoteBranch: arguments[0]})
			})
		},
	}
}
