package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/gitbridge/internal/credentials"
	"github.com/temirov/gitbridge/internal/repository"
	"github.com/temirov/gitbridge/internal/utils/flags"
)

const (
	versionCommandUseConstant        = "version"
	versionCommandShortConstant      = "Report the git version and global identity"
	statusCommandUseConstant         = "status"
	statusCommandShortConstant       = "Show files, commit divergence and branch tracking"
	filesCommandUseConstant          = "files"
	filesCommandShortConstant        = "List tracked and untracked files with their status"
	logCommandUseConstant            = "log"
	logCommandShortConstant          = "List one page of commit history"
	logLimitFlagNameConstant         = "limit"
	logLimitFlagUsageConstant        = "Maximum number of commits to return."
	logBeforeFlagNameConstant        = "before"
	logBeforeFlagUsageConstant       = "Revision to start listing from."
	defaultLogLimitConstant          = 20
	showCommandUseConstant           = "show <sha>"
	showCommandShortConstant         = "Print a commit with its patch"
	fileCommandUseConstant           = "file <path>"
	fileCommandShortConstant         = "Print a file as stored at a revision"
	treeishFlagNameConstant          = "treeish"
	treeishFlagUsageConstant         = "Revision to read the file from."
	defaultTreeishConstant           = "HEAD"
	diffCommandUseConstant           = "diff <path>"
	diffCommandShortConstant         = "Print the diff of one file"
	diffTypeFlagNameConstant         = "type"
	diffTypeFlagUsageConstant        = "Compare the working tree or the index against HEAD."
	remotesCommandUseConstant        = "remotes"
	remotesCommandShortConstant      = "List configured remotes"
	branchesCommandUseConstant       = "branches"
	branchesCommandShortConstant     = "List branches with tracking information"
	remoteFlagNameConstant           = "remote"
	branchesRemoteFlagUsageConstant  = "List remote-tracking branches."
	branchStatusCommandUseConstant   = "branch-status <remote-branch>"
	branchStatusCommandShortConstant = "Count commits ahead of and behind a remote branch"
	remoteBranchCommandUseConstant   = "remote-branch"
	remoteBranchCommandShortConstant = "Print the upstream of the current branch"
	textLineTemplateConstant         = "%s\n"
	singleArgumentCountConstant      = 1
)

type serviceOperation func(executionContext context.Context, service *repository.Service, repositoryPath string) error

func (application *Application) withService(command *cobra.Command, auth *credentials.AuthSpec, operation serviceOperation) error {
	repositoryPath, pathError := application.repositoryPath()
	if pathError != nil {
		return pathError
	}
	executionContext := command.Context()
	service, serviceError := application.newRepositoryService(executionContext, auth)
	if serviceError != nil {
		return serviceError
	}
	return operation(executionContext, service, repositoryPath)
}

func (application *Application) render(command *cobra.Command, value any) error {
	return renderResult(command.OutOrStdout(), application.outputFormat, value)
}

func (application *Application) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(_ context.Context, service *repository.Service, _ string) error {
				return application.render(command, service.Configuration())
			})
		},
	}
}

func (application *Application) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				repositoryStatus, statusError := service.Status(executionContext, repository.RepositoryOptions{RepositoryPath: repositoryPath})
				if statusError != nil {
					return statusError
				}
				return application.render(command, repositoryStatus)
			})
		},
	}
}

func (application *Application) newFilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   filesCommandUseConstant,
		Short: filesCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				files, filesError := service.Files(executionContext, repository.RepositoryOptions{RepositoryPath: repositoryPath})
				if filesError != nil {
					return filesError
				}
				return application.render(command, files)
			})
		},
	}
}

func (application *Application) newLogCommand() *cobra.Command {
	var limit int
	var before string
	logCommand := &cobra.Command{
		Use:   logCommandUseConstant,
		Short: logCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				page, commitsError := service.Commits(executionContext, repository.CommitsOptions{RepositoryPath: repositoryPath, Limit: limit, Before: before})
				if commitsError != nil {
					return commitsError
				}
				return application.render(command, page)
			})
		},
	}
	logCommand.Flags().IntVar(&limit, logLimitFlagNameConstant, defaultLogLimitConstant, logLimitFlagUsageConstant)
	logCommand.Flags().StringVar(&before, logBeforeFlagNameConstant, "", logBeforeFlagUsageConstant)
	return logCommand
}

func (application *Application) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   showCommandUseConstant,
		Short: showCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				output, showError := service.ShowCommit(executionContext, repository.ShowOptions{RepositoryPath: repositoryPath, Sha: arguments[0]})
				if showError != nil {
					return showError
				}
				return renderText(command.OutOrStdout(), output)
			})
		},
	}
}

func (application *Application) newFileCommand() *cobra.Command {
	var treeish string
	fileCommand := &cobra.Command{
		Use:   fileCommandUseConstant,
		Short: fileCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				content, fileError := service.GetFile(executionContext, repository.GetFileOptions{RepositoryPath: repositoryPath, File: arguments[0], Treeish: treeish})
				if fileError != nil {
					return fileError
				}
				return renderText(command.OutOrStdout(), content)
			})
		},
	}
	fileCommand.Flags().StringVar(&treeish, treeishFlagNameConstant, defaultTreeishConstant, treeishFlagUsageConstant)
	return fileCommand
}

func (application *Application) newDiffCommand() *cobra.Command {
	diffType := flags.NewChoice(string(repository.DiffTypeTree), string(repository.DiffTypeTree), string(repository.DiffTypeIndex))
	diffCommand := &cobra.Command{
		Use:   diffCommandUseConstant,
		Short: diffCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				diff, diffError := service.GetFileDiff(executionContext, repository.DiffOptions{RepositoryPath: repositoryPath, File: arguments[0], Type: repository.DiffType(diffType.String())})
				if diffError != nil {
					return diffError
				}
				return renderText(command.OutOrStdout(), diff)
			})
		},
	}
	diffCommand.Flags().Var(diffType, diffTypeFlagNameConstant, diffType.Usage(diffTypeFlagUsageConstant))
	return diffCommand
}

func (application *Application) newRemotesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   remotesCommandUseConstant,
		Short: remotesCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				remotes, remotesError := service.Remotes(executionContext, repository.RepositoryOptions{RepositoryPath: repositoryPath})
				if remotesError != nil {
					return remotesError
				}
				return application.render(command, remotes)
			})
		},
	}
}

func (application *Application) newBranchesCommand() *cobra.Command {
	var remote bool
	branchesCommand := &cobra.Command{
		Use:   branchesCommandUseConstant,
		Short: branchesCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				branches, branchesError := service.Branches(executionContext, repository.BranchesOptions{RepositoryPath: repositoryPath, Remote: remote})
				if branchesError != nil {
					return branchesError
				}
				return application.render(command, branches)
			})
		},
	}
	branchesCommand.Flags().BoolVar(&remote, remoteFlagNameConstant, false, branchesRemoteFlagUsageConstant)
	return branchesCommand
}

func (application *Application) newBranchStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   branchStatusCommandUseConstant,
		Short: branchStatusCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				divergence, statusError := service.BranchStatus(executionContext, repository.BranchStatusOptions{RepositoryPath: repositoryPath, RemoteBranch: arguments[0]})
				if statusError != nil {
					return statusError
				}
				return application.render(command, divergence)
			})
		},
	}
}

func (application *Application) newRemoteBranchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   remoteBranchCommandUseConstant,
		Short: remoteBranchCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.withService(command, nil, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				remoteBranch, remoteBranchError := service.RemoteBranch(executionContext, repository.RepositoryOptions{RepositoryPath: repositoryPath})
				if remoteBranchError != nil {
					return remoteBranchError
				}
				return renderText(command.OutOrStdout(), fmt.Sprintf(textLineTemplateConstant, remoteBranch))
			})
		},
	}
}
