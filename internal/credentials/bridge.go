package credentials

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	brokerMissingMessageConstant       = "credential broker not configured"
	relayScriptMissingMessageConstant  = "credential relay script not configured"
	releaseFailureMessageConstant      = "credential channel release failed"
	logFieldAuthenticationModeConstant = "authentication_mode"
	authenticationModeSSHConstant      = "ssh_identity"
	authenticationModePromptConstant   = "credential_prompt"
	bridgeAcquiredMessageConstant      = "credential channel acquired"
)

// ErrBrokerNotConfigured indicates the bridge was constructed without a broker.
var ErrBrokerNotConfigured = errors.New(brokerMissingMessageConstant)

// ErrRelayScriptNotConfigured indicates the bridge has no relay program to hand to git.
var ErrRelayScriptNotConfigured = errors.New(relayScriptMissingMessageConstant)

// BridgeDependencies enumerates collaborators required by the bridge.
type BridgeDependencies struct {
	Broker          Broker
	InterpreterPath string
	RelayScriptPath string
	Logger          *zap.Logger
}

// Bridge points git's credential prompts at a per-invocation broker channel.
type Bridge struct {
	broker          Broker
	interpreterPath string
	relayScriptPath string
	logger          *zap.Logger
}

// NewBridge constructs a Bridge from the provided dependencies.
func NewBridge(dependencies BridgeDependencies) (*Bridge, error) {
	if dependencies.Broker == nil {
		return nil, ErrBrokerNotConfigured
	}
	if len(dependencies.RelayScriptPath) == 0 {
		return nil, ErrRelayScriptNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		broker:          dependencies.Broker,
		interpreterPath: dependencies.InterpreterPath,
		relayScriptPath: dependencies.RelayScriptPath,
		logger:          logger,
	}, nil
}

// Run executes operation with an environment overlay routing credential prompts to a fresh channel.
// Without auth the operation runs with no overlay and no channel. The channel is released exactly
// once after operation returns; a release failure is logged and never replaces operation's result.
func (bridge *Bridge) Run(executionContext context.Context, auth *AuthSpec, operation func(environment map[string]string) error) error {
	if auth == nil {
		return operation(nil)
	}

	channel, acquireError := bridge.broker.Acquire(executionContext, *auth)
	if acquireError != nil {
		return acquireError
	}
	defer func() {
		if releaseError := channel.Release(); releaseError != nil {
			bridge.logger.Warn(releaseFailureMessageConstant, zap.String(logFieldChannelPathConstant, channel.Path), zap.Error(releaseError))
		}
	}()

	relayConfiguration := RelayConfiguration{
		ChannelPath:     channel.Path,
		InterpreterPath: bridge.interpreterPath,
		RelayScriptPath: bridge.relayScriptPath,
	}

	environment := relayConfiguration.Environment()
	authenticationMode := authenticationModePromptConstant
	if auth.UsesSSHIdentity() {
		environment = relayConfiguration.SSHEnvironment(auth.KeyPath)
		authenticationMode = authenticationModeSSHConstant
	}
	bridge.logger.Debug(bridgeAcquiredMessageConstant, zap.String(logFieldChannelPathConstant, channel.Path), zap.String(logFieldAuthenticationModeConstant, authenticationMode))

	return operation(environment)
}
