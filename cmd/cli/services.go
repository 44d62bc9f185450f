package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/temirov/gitbridge/internal/credentials"
	"github.com/temirov/gitbridge/internal/execshell"
	"github.com/temirov/gitbridge/internal/gitcli"
	"github.com/temirov/gitbridge/internal/repository"
)

const (
	executorCreationTemplateConstant  = "unable to construct git executor: %w"
	runnerCreationTemplateConstant    = "unable to construct git runner: %w"
	serviceCreationTemplateConstant   = "unable to construct repository service: %w"
	relayInstallationTemplateConstant = "unable to install credential relay: %w"
	interpreterLookupTemplateConstant = "unable to locate gitbridge executable: %w"
	bridgeCreationTemplateConstant    = "unable to construct credential bridge: %w"
)

// ErrGitUnavailable indicates that the configured git executable could not report its version.
var ErrGitUnavailable = errors.New("git executable unavailable")

func defaultExecutablePathLookup() (string, error) {
	return os.Executable()
}

func defaultEnvironmentLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

func (application *Application) gitExecutable() string {
	executable := strings.TrimSpace(application.configuration.Git.Executable)
	if len(executable) == 0 {
		return defaultGitExecutableConstant
	}
	return application.homeExpander.Expand(executable)
}

func (application *Application) newGitRunner() (*gitcli.Runner, error) {
	executorOptions := []execshell.ExecutorOption{
		execshell.WithGitExecutable(application.gitExecutable()),
		execshell.WithCommandTimeout(application.configuration.Git.CommandTimeout),
	}
	if application.metricsObserver != nil {
		executorOptions = append(executorOptions, execshell.WithObservers(application.metricsObserver))
	}

	executor, executorError := execshell.NewShellExecutor(application.logger, application.commandRunner, executorOptions...)
	if executorError != nil {
		return nil, fmt.Errorf(executorCreationTemplateConstant, executorError)
	}

	runner, runnerError := gitcli.NewRunner(executor)
	if runnerError != nil {
		return nil, fmt.Errorf(runnerCreationTemplateConstant, runnerError)
	}
	return runner, nil
}

// newRepositoryService discovers the git installation and builds the facade. A credential
// bridge is attached only when the caller supplies credentials.
func (application *Application) newRepositoryService(executionContext context.Context, auth *credentials.AuthSpec) (*repository.Service, error) {
	runner, runnerError := application.newGitRunner()
	if runnerError != nil {
		return nil, runnerError
	}

	toolConfiguration := repository.Initialize(executionContext, runner, application.gitExecutable())
	if toolConfiguration == nil {
		return nil, ErrGitUnavailable
	}

	dependencies := repository.Dependencies{
		Runner:        runner,
		Configuration: *toolConfiguration,
		Logger:        application.logger,
	}

	if auth != nil {
		bridge, bridgeError := application.newCredentialBridge()
		if bridgeError != nil {
			return nil, bridgeError
		}
		dependencies.Bridge = bridge
	}

	service, serviceError := repository.NewService(dependencies)
	if serviceError != nil {
		return nil, fmt.Errorf(serviceCreationTemplateConstant, serviceError)
	}
	return service, nil
}

func (application *Application) newCredentialBridge() (*credentials.Bridge, error) {
	relayDirectory := strings.TrimSpace(application.configuration.Credentials.RelayDirectory)
	if len(relayDirectory) == 0 {
		relayDirectory = defaultRelayDirectory()
	}

	relayScriptPath, installError := credentials.InstallRelayScript(application.homeExpander.Expand(relayDirectory))
	if installError != nil {
		return nil, fmt.Errorf(relayInstallationTemplateConstant, installError)
	}

	interpreterPath, lookupError := application.executablePathLookup()
	if lookupError != nil {
		return nil, fmt.Errorf(interpreterLookupTemplateConstant, lookupError)
	}

	socketDirectory := application.homeExpander.Expand(strings.TrimSpace(application.configuration.Credentials.SocketDirectory))
	bridge, bridgeError := credentials.NewBridge(credentials.BridgeDependencies{
		Broker:          credentials.NewSocketBroker(socketDirectory, application.logger),
		InterpreterPath: interpreterPath,
		RelayScriptPath: relayScriptPath,
		Logger:          application.logger,
	})
	if bridgeError != nil {
		return nil, fmt.Errorf(bridgeCreationTemplateConstant, bridgeError)
	}
	return bridge, nil
}

func (application *Application) repositoryPath() (string, error) {
	candidate := strings.TrimSpace(application.repositoryFlagValue)
	if len(candidate) == 0 {
		candidate = defaultRepositoryPathConstant
	}
	return application.homeExpander.Absolute(candidate)
}
