package credentials_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitbridge/internal/credentials"
)

func newSocketDirectory(testInstance *testing.T) string {
	testInstance.Helper()
	// Kept short: unix socket paths are limited to roughly a hundred bytes.
	directory, directoryError := os.MkdirTemp("", "gbsock")
	require.NoError(testInstance, directoryError)
	testInstance.Cleanup(func() { _ = os.RemoveAll(directory) })
	return directory
}

func TestSocketBrokerAnswersPrompts(testInstance *testing.T) {
	broker := credentials.NewSocketBroker(newSocketDirectory(testInstance), zap.NewNop())
	channel, acquireError := broker.Acquire(context.Background(), credentials.AuthSpec{Username: "ada", Password: "s3cret"})
	require.NoError(testInstance, acquireError)
	defer func() { require.NoError(testInstance, channel.Release()) }()

	executionContext, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	username, usernameError := credentials.RequestSecret(executionContext, channel.Path, "Username for 'https://example.com': ")
	require.NoError(testInstance, usernameError)
	require.Equal(testInstance, "ada", username)

	password, passwordError := credentials.RequestSecret(executionContext, channel.Path, "Password for 'https://ada@example.com': ")
	require.NoError(testInstance, passwordError)
	require.Equal(testInstance, "s3cret", password)

	_, passphraseError := credentials.RequestSecret(executionContext, channel.Path, "Enter passphrase for key '/home/ada/.ssh/id_ed25519': ")
	require.ErrorContains(testInstance, passphraseError, "no passphrase available")
}

func TestSocketBrokerRejectsHostKeysByDefault(testInstance *testing.T) {
	broker := credentials.NewSocketBroker(newSocketDirectory(testInstance), nil)
	channel, acquireError := broker.Acquire(context.Background(), credentials.AuthSpec{KeyPath: "/keys/id"})
	require.NoError(testInstance, acquireError)
	defer channel.Release()

	answer, requestError := credentials.RequestSecret(context.Background(), channel.Path, "Are you sure you want to continue connecting (yes/no/[fingerprint])? ")
	require.NoError(testInstance, requestError)
	require.Equal(testInstance, "no", answer)
}

func TestChannelReleaseRemovesSocketAndIsIdempotent(testInstance *testing.T) {
	broker := credentials.NewSocketBroker(newSocketDirectory(testInstance), zap.NewNop())
	channel, acquireError := broker.Acquire(context.Background(), credentials.AuthSpec{Password: "x"})
	require.NoError(testInstance, acquireError)

	_, statError := os.Stat(channel.Path)
	require.NoError(testInstance, statError)

	require.NoError(testInstance, channel.Release())
	require.NoError(testInstance, channel.Release())

	_, statError = os.Stat(channel.Path)
	require.True(testInstance, os.IsNotExist(statError))

	_, requestError := credentials.RequestSecret(context.Background(), channel.Path, "Password: ")
	require.Error(testInstance, requestError)
}

func TestConcurrentAcquisitionsUseIndependentChannels(testInstance *testing.T) {
	broker := credentials.NewSocketBroker(newSocketDirectory(testInstance), zap.NewNop())
	first, firstError := broker.Acquire(context.Background(), credentials.AuthSpec{Password: "one"})
	require.NoError(testInstance, firstError)
	defer first.Release()
	second, secondError := broker.Acquire(context.Background(), credentials.AuthSpec{Password: "two"})
	require.NoError(testInstance, secondError)
	defer second.Release()

	require.NotEqual(testInstance, first.Path, second.Path)

	firstSecret, _ := credentials.RequestSecret(context.Background(), first.Path, "Password: ")
	secondSecret, _ := credentials.RequestSecret(context.Background(), second.Path, "Password: ")
	require.Equal(testInstance, "one", firstSecret)
	require.Equal(testInstance, "two", secondSecret)
}

func TestRunRelayPrintsSecret(testInstance *testing.T) {
	broker := credentials.NewSocketBroker(newSocketDirectory(testInstance), zap.NewNop())
	channel, acquireError := broker.Acquire(context.Background(), credentials.AuthSpec{Username: "ada"})
	require.NoError(testInstance, acquireError)
	defer channel.Release()

	environment := map[string]string{credentials.ChannelPathEnvironmentName: channel.Path}
	lookup := func(name string) (string, bool) {
		value, exists := environment[name]
		return value, exists
	}

	var output bytes.Buffer
	require.NoError(testInstance, credentials.RunRelay(context.Background(), "Username for 'https://example.com': ", lookup, &output))
	require.Equal(testInstance, "ada\n", output.String())
}

func TestRunRelayRequiresChannelPath(testInstance *testing.T) {
	lookup := func(string) (string, bool) { return "", false }
	relayError := credentials.RunRelay(context.Background(), "Password: ", lookup, &bytes.Buffer{})
	require.ErrorIs(testInstance, relayError, credentials.ErrChannelPathMissing)
}
