package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/gitbridge/internal/credentials"
	"github.com/temirov/gitbridge/internal/repository"
)

const (
	cloneCommandUseConstant             = "clone <url>"
	cloneCommandShortConstant           = "Clone a repository into the working copy path"
	remoteNameFlagNameConstant          = "remote-name"
	remoteNameFlagUsageConstant         = "Name of the remote created by the clone."
	branchFlagNameConstant              = "branch"
	cloneBranchFlagUsageConstant        = "Branch to check out after cloning."
	fetchCommandUseConstant             = "fetch <remote>"
	fetchCommandShortConstant           = "Fetch from a remote"
	pullCommandUseConstant              = "pull [<remote> <branch>]"
	pullCommandShortConstant            = "Merge changes from a remote branch"
	pushCommandUseConstant              = "push <remote> [branch]"
	pushCommandShortConstant            = "Push the current branch to a remote"
	setUpstreamFlagNameConstant         = "set-upstream"
	setUpstreamFlagShorthandConstant    = "u"
	setUpstreamFlagUsageConstant        = "Record the pushed branch as upstream."
	usernameFlagNameConstant            = "username"
	usernameFlagUsageConstant           = "Username offered to HTTPS credential prompts; the password is read from GITBRIDGE_PASSWORD."
	sshKeyFlagNameConstant              = "ssh-key"
	sshKeyFlagUsageConstant             = "Private key used for SSH remotes; the passphrase is read from GITBRIDGE_SSH_PASSPHRASE."
	acceptHostKeyFlagNameConstant       = "accept-host-key"
	acceptHostKeyFlagUsageConstant      = "Answer yes when ssh asks to trust an unknown host key."
	passwordEnvironmentNameConstant     = "GITBRIDGE_PASSWORD"
	passphraseEnvironmentNameConstant   = "GITBRIDGE_SSH_PASSPHRASE"
	cloneDirectoryPermissionsConstant   = 0o755
	cloneDirectoryErrorTemplateConstant = "unable to create clone directory %s: %w"
	pullArgumentCountErrorConstant      = "pull expects no arguments or both a remote and a branch"
	pullArgumentCountConstant           = 2
	pushMaximumArgumentsConstant        = 2
)

var errPullArguments = errors.New(pullArgumentCountErrorConstant)

type authenticationFlags struct {
	username      string
	sshKeyPath    string
	acceptHostKey bool
}

func bindAuthenticationFlags(command *cobra.Command, target *authenticationFlags) {
	command.Flags().StringVar(&target.username, usernameFlagNameConstant, "", usernameFlagUsageConstant)
	command.Flags().StringVar(&target.sshKeyPath, sshKeyFlagNameConstant, "", sshKeyFlagUsageConstant)
	command.Flags().BoolVar(&target.acceptHostKey, acceptHostKeyFlagNameConstant, false, acceptHostKeyFlagUsageConstant)
}

// authSpec combines flags, environment secrets and configuration. Nil means no credentials
// were supplied and git runs without a credential channel.
func (application *Application) authSpec(authentication authenticationFlags) *credentials.AuthSpec {
	password, _ := application.environmentLookup(passwordEnvironmentNameConstant)
	passphrase, _ := application.environmentLookup(passphraseEnvironmentNameConstant)

	spec := credentials.AuthSpec{
		Username:              strings.TrimSpace(authentication.username),
		Password:              password,
		KeyPath:               application.homeExpander.Expand(strings.TrimSpace(authentication.sshKeyPath)),
		Passphrase:            passphrase,
		AcceptUnknownHostKeys: authentication.acceptHostKey || application.configuration.Credentials.AcceptUnknownHostKeys,
	}
	if len(spec.Username) == 0 && len(spec.Password) == 0 && len(spec.KeyPath) == 0 && len(spec.Passphrase) == 0 {
		return nil
	}
	return &spec
}

func (application *Application) newCloneCommand() *cobra.Command {
	var authentication authenticationFlags
	var remoteName, branch string
	cloneCommand := &cobra.Command{
		Use:   cloneCommandUseConstant,
		Short: cloneCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			auth := application.authSpec(authentication)
			return application.withService(command, auth, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				if directoryError := os.MkdirAll(repositoryPath, cloneDirectoryPermissionsConstant); directoryError != nil {
					return fmt.Errorf(cloneDirectoryErrorTemplateConstant, repositoryPath, directoryError)
				}
				return service.Clone(executionContext, repository.CloneOptions{
					URL:            arguments[0],
					RepositoryPath: repositoryPath,
					RemoteName:     remoteName,
					Branch:         branch,
					Auth:           auth,
				})
			})
		},
	}
	cloneCommand.Flags().StringVar(&remoteName, remoteNameFlagNameConstant, "", remoteNameFlagUsageConstant)
	cloneCommand.Flags().StringVar(&branch, branchFlagNameConstant, "", cloneBranchFlagUsageConstant)
	bindAuthenticationFlags(cloneCommand, &authentication)
	return cloneCommand
}

func (application *Application) newFetchCommand() *cobra.Command {
	var authentication authenticationFlags
	fetchCommand := &cobra.Command{
		Use:   fetchCommandUseConstant,
		Short: fetchCommandShortConstant,
		Args:  cobra.ExactArgs(singleArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			auth := application.authSpec(authentication)
			return application.withService(command, auth, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				return service.Fetch(executionContext, repository.RemoteOptions{RepositoryPath: repositoryPath, Remote: arguments[0], Auth: auth})
			})
		},
	}
	bindAuthenticationFlags(fetchCommand, &authentication)
	return fetchCommand
}

func (application *Application) newPullCommand() *cobra.Command {
	var authentication authenticationFlags
	pullCommand := &cobra.Command{
		Use:   pullCommandUseConstant,
		Short: pullCommandShortConstant,
		Args: func(command *cobra.Command, arguments []string) error {
			if len(arguments) != 0 && len(arguments) != pullArgumentCountConstant {
				return errPullArguments
			}
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			auth := application.authSpec(authentication)
			options := repository.PullOptions{Auth: auth}
			if len(arguments) == pullArgumentCountConstant {
				options.Remote = arguments[0]
				options.Branch = arguments[1]
			}
			return application.withService(command, auth, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				options.RepositoryPath = repositoryPath
				return service.Pull(executionContext, options)
			})
		},
	}
	bindAuthenticationFlags(pullCommand, &authentication)
	return pullCommand
}

func (application *Application) newPushCommand() *cobra.Command {
	var authentication authenticationFlags
	var setUpstream bool
	pushCommand := &cobra.Command{
		Use:   pushCommandUseConstant,
		Short: pushCommandShortConstant,
		Args:  cobra.RangeArgs(singleArgumentCountConstant, pushMaximumArgumentsConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			auth := application.authSpec(authentication)
			options := repository.PushOptions{Remote: arguments[0], SetUpstream: setUpstream, Auth: auth}
			if len(arguments) == pushMaximumArgumentsConstant {
				options.Branch = arguments[1]
			}
			return application.withService(command, auth, func(executionContext context.Context, service *repository.Service, repositoryPath string) error {
				options.RepositoryPath = repositoryPath
				return service.Push(executionContext, options)
			})
		},
	}
	pushCommand.Flags().BoolVarP(&setUpstream, setUpstreamFlagNameConstant, setUpstreamFlagShorthandConstant, false, setUpstreamFlagUsageConstant)
	bindAuthenticationFlags(pushCommand, &authentication)
	return pushCommand
}
