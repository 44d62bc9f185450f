package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/temirov/gitbridge/internal/credentials"
	"github.com/temirov/gitbridge/internal/gitcli"
	"github.com/temirov/gitbridge/internal/status"
)

const (
	runnerMissingMessageConstant          = "git runner not configured"
	bridgeMissingMessageConstant          = "credential bridge not configured"
	invalidOptionsTemplateConstant        = "invalid %s options: %v"
	invalidRemoteURLTemplateConstant      = "invalid remote url %q: %w"
	reconcilerCreationTemplateConstant    = "unable to create status reconciler: %w"
	logFieldOperationConstant             = "operation"
	logFieldRepositoryConstant            = "repository"
	logFieldErrorKindConstant             = "error_kind"
	remoteOperationStartedMessageConstant = "remote operation started"
	operationReclassifiedMessageConstant  = "git failure reclassified"
)

// ErrRunnerNotConfigured indicates the service was constructed without a git runner.
var ErrRunnerNotConfigured = errors.New(runnerMissingMessageConstant)

// ErrCredentialBridgeNotConfigured indicates credentials were supplied to a service without a bridge.
var ErrCredentialBridgeNotConfigured = errors.New(bridgeMissingMessageConstant)

// GitRunner executes a single git invocation and returns its standard output.
type GitRunner interface {
	Run(executionContext context.Context, invocation gitcli.Invocation) (string, error)
}

// CredentialBridge scopes a credential channel around one operation.
type CredentialBridge interface {
	Run(executionContext context.Context, auth *credentials.AuthSpec, operation func(environment map[string]string) error) error
}

// InvalidOptionsError reports operation options rejected before git was started.
type InvalidOptionsError struct {
	Operation string
	Cause     error
}

// Error describes the rejected options.
func (optionsError InvalidOptionsError) Error() string {
	return fmt.Sprintf(invalidOptionsTemplateConstant, optionsError.Operation, optionsError.Cause)
}

// Unwrap exposes the validation failure.
func (optionsError InvalidOptionsError) Unwrap() error {
	return optionsError.Cause
}

// Dependencies enumerates collaborators required by the service.
type Dependencies struct {
	Runner        GitRunner
	Bridge        CredentialBridge
	Configuration ToolConfiguration
	Logger        *zap.Logger
}

// Service is the repository operation facade.
type Service struct {
	runner        GitRunner
	bridge        CredentialBridge
	reconciler    *status.Reconciler
	configuration ToolConfiguration
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewService constructs a Service. The bridge is optional; without it, operations that
// receive credentials fail with ErrCredentialBridgeNotConfigured.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Runner == nil {
		return nil, ErrRunnerNotConfigured
	}

	reconciler, reconcilerError := status.NewReconciler(status.ReconcilerDependencies{Runner: dependencies.Runner})
	if reconcilerError != nil {
		return nil, fmt.Errorf(reconcilerCreationTemplateConstant, reconcilerError)
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		runner:        dependencies.Runner,
		bridge:        dependencies.Bridge,
		reconciler:    reconciler,
		configuration: dependencies.Configuration,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
	}, nil
}

// Configuration returns the tool configuration the service was built with.
func (service *Service) Configuration() ToolConfiguration {
	return service.configuration
}

func (service *Service) validateOptions(operation string, options any) error {
	if validationError := service.validate.Struct(options); validationError != nil {
		return InvalidOptionsError{Operation: operation, Cause: validationError}
	}
	return nil
}

func validateRemoteURL(remoteURL string) error {
	if _, endpointError := transport.NewEndpoint(strings.TrimSpace(remoteURL)); endpointError != nil {
		return fmt.Errorf(invalidRemoteURLTemplateConstant, remoteURL, endpointError)
	}
	return nil
}

// run executes a local git command in repositoryPath.
func (service *Service) run(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	return service.runner.Run(executionContext, gitcli.Invocation{Arguments: arguments, WorkingDirectory: repositoryPath})
}

// runRemote executes git inside a credential bridge scope when auth is supplied.
func (service *Service) runRemote(executionContext context.Context, operation string, repositoryPath string, auth *credentials.AuthSpec, arguments ...string) (string, error) {
	service.logger.Debug(remoteOperationStartedMessageConstant, zap.String(logFieldOperationConstant, operation), zap.String(logFieldRepositoryConstant, repositoryPath))
	if auth == nil {
		return service.run(executionContext, repositoryPath, arguments...)
	}
	if service.bridge == nil {
		return "", ErrCredentialBridgeNotConfigured
	}

	var output string
	bridgeError := service.bridge.Run(executionContext, auth, func(environment map[string]string) error {
		var runError error
		output, runError = service.runner.Run(executionContext, gitcli.Invocation{
			Arguments:            arguments,
			WorkingDirectory:     repositoryPath,
			EnvironmentVariables: environment,
		})
		return runError
	})
	return output, bridgeError
}

// reclassify returns err with its CommandError kind replaced when decide selects a new kind.
func (service *Service) reclassify(operation string, err error, decide func(commandError *gitcli.CommandError) (gitcli.ErrorKind, bool)) error {
	var commandError *gitcli.CommandError
	if !errors.As(err, &commandError) {
		return err
	}
	kind, changed := decide(commandError)
	if !changed || kind == commandError.Kind {
		return err
	}
	service.logger.Debug(operationReclassifiedMessageConstant, zap.String(logFieldOperationConstant, operation), zap.String(logFieldErrorKindConstant, string(kind)))
	reclassified := *commandError
	reclassified.Kind = kind
	return &reclassified
}
