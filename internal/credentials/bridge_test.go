package credentials_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitbridge/internal/credentials"
)

type stubBroker struct {
	acquired     []credentials.AuthSpec
	releaseCalls int
	releaseError error
	acquireError error
}

func (broker *stubBroker) Acquire(_ context.Context, auth credentials.AuthSpec) (*credentials.Channel, error) {
	if broker.acquireError != nil {
		return nil, broker.acquireError
	}
	broker.acquired = append(broker.acquired, auth)
	return credentials.NewChannel("/tmp/channel.sock", func() error {
		broker.releaseCalls++
		return broker.releaseError
	}), nil
}

func newTestBridge(testInstance *testing.T, broker credentials.Broker, logger *zap.Logger) *credentials.Bridge {
	testInstance.Helper()
	bridge, creationError := credentials.NewBridge(credentials.BridgeDependencies{
		Broker:          broker,
		InterpreterPath: "/usr/local/bin/gitbridge",
		RelayScriptPath: "/var/run/gitbridge/askpass.sh",
		Logger:          logger,
	})
	require.NoError(testInstance, creationError)
	return bridge
}

func TestNewBridgeValidatesDependencies(testInstance *testing.T) {
	_, creationError := credentials.NewBridge(credentials.BridgeDependencies{RelayScriptPath: "/relay"})
	require.ErrorIs(testInstance, creationError, credentials.ErrBrokerNotConfigured)

	_, creationError = credentials.NewBridge(credentials.BridgeDependencies{Broker: &stubBroker{}})
	require.ErrorIs(testInstance, creationError, credentials.ErrRelayScriptNotConfigured)
}

func TestBridgeRunWithoutAuthSkipsBroker(testInstance *testing.T) {
	broker := &stubBroker{}
	bridge := newTestBridge(testInstance, broker, zap.NewNop())

	var receivedEnvironment map[string]string
	runError := bridge.Run(context.Background(), nil, func(environment map[string]string) error {
		receivedEnvironment = environment
		return nil
	})

	require.NoError(testInstance, runError)
	require.Nil(testInstance, receivedEnvironment)
	require.Empty(testInstance, broker.acquired)
	require.Zero(testInstance, broker.releaseCalls)
}

func TestBridgeRunRoutesPromptsThroughAskPass(testInstance *testing.T) {
	broker := &stubBroker{}
	bridge := newTestBridge(testInstance, broker, zap.NewNop())

	var receivedEnvironment map[string]string
	runError := bridge.Run(context.Background(), &credentials.AuthSpec{Username: "ada", Password: "pw"}, func(environment map[string]string) error {
		receivedEnvironment = environment
		return nil
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, map[string]string{
		"GIT_ASKPASS":                "/var/run/gitbridge/askpass.sh",
		"GITBRIDGE_SOCKET_PATH":      "/tmp/channel.sock",
		"GITBRIDGE_INTERPRETER_PATH": "/usr/local/bin/gitbridge",
		"GITBRIDGE_ASKPASS_PATH":     "/var/run/gitbridge/askpass.sh",
	}, receivedEnvironment)
	require.Equal(testInstance, 1, broker.releaseCalls)
}

func TestBridgeRunConfiguresSSHIdentity(testInstance *testing.T) {
	broker := &stubBroker{}
	bridge := newTestBridge(testInstance, broker, zap.NewNop())

	var receivedEnvironment map[string]string
	runError := bridge.Run(context.Background(), &credentials.AuthSpec{KeyPath: "/home/ada/keys/it's"}, func(environment map[string]string) error {
		receivedEnvironment = environment
		return nil
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, `ssh -i '/home/ada/keys/it'\''s' -F /dev/null`, receivedEnvironment["GIT_SSH_COMMAND"])
	require.Equal(testInstance, "/var/run/gitbridge/askpass.sh", receivedEnvironment["SSH_ASKPASS"])
	require.Equal(testInstance, "force", receivedEnvironment["SSH_ASKPASS_REQUIRE"])
	require.Equal(testInstance, "dummy:0", receivedEnvironment["DISPLAY"])
	require.NotContains(testInstance, receivedEnvironment, "GIT_ASKPASS")
	require.Equal(testInstance, 1, broker.releaseCalls)
}

func TestBridgeRunReleasesOnFailureAndKeepsOperationError(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.WarnLevel)
	broker := &stubBroker{releaseError: errors.New("socket busy")}
	bridge := newTestBridge(testInstance, broker, zap.New(observerCore))

	operationError := errors.New("push rejected")
	runError := bridge.Run(context.Background(), &credentials.AuthSpec{Password: "pw"}, func(map[string]string) error {
		return operationError
	})

	require.ErrorIs(testInstance, runError, operationError)
	require.Equal(testInstance, 1, broker.releaseCalls)
	require.Equal(testInstance, 1, observerLogs.Len())
}

func TestBridgeRunReleaseFailureDoesNotFailSuccessfulOperation(testInstance *testing.T) {
	broker := &stubBroker{releaseError: errors.New("socket busy")}
	bridge := newTestBridge(testInstance, broker, zap.NewNop())

	runError := bridge.Run(context.Background(), &credentials.AuthSpec{Password: "pw"}, func(map[string]string) error {
		return nil
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, broker.releaseCalls)
}

func TestBridgeRunSurfacesAcquireFailure(testInstance *testing.T) {
	acquireError := errors.New("no socket directory")
	bridge := newTestBridge(testInstance, &stubBroker{acquireError: acquireError}, zap.NewNop())

	operationCalled := false
	runError := bridge.Run(context.Background(), &credentials.AuthSpec{Password: "pw"}, func(map[string]string) error {
		operationCalled = true
		return nil
	})

	require.ErrorIs(testInstance, runError, acquireError)
	require.False(testInstance, operationCalled)
}
