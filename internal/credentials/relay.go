package credentials

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables shared between the bridge and the relay program.
const (
	ChannelPathEnvironmentName     = "GITBRIDGE_SOCKET_PATH"
	InterpreterPathEnvironmentName = "GITBRIDGE_INTERPRETER_PATH"
	RelayPathEnvironmentName       = "GITBRIDGE_ASKPASS_PATH"
	RelaySubcommandName            = "askpass"
)

const (
	gitAskPassEnvironmentName        = "GIT_ASKPASS"
	sshAskPassEnvironmentName        = "SSH_ASKPASS"
	sshAskPassRequireEnvironmentName = "SSH_ASKPASS_REQUIRE"
	sshAskPassRequireForceValue      = "force"
	displayEnvironmentName           = "DISPLAY"
	displayPlaceholderValue          = "dummy:0"
	gitSSHCommandEnvironmentName     = "GIT_SSH_COMMAND"
	gitSSHCommandTemplateConstant    = "ssh -i %s -F /dev/null"
	relayScriptFileNameConstant      = "gitbridge-askpass.sh"
	relayScriptPermissionsConstant   = 0o700
	relayDirectoryPermissions        = 0o700
	relayScriptContentTemplate       = "#!/bin/sh\nexec \"$%s\" %s \"$@\"\n"
	singleQuoteConstant              = "'"
	escapedSingleQuoteConstant       = `'\''`
	channelPathMissingMessage        = "credential channel path not provided"
	relayDialErrorTemplate           = "unable to reach credential channel: %w"
	relayExchangeErrorTemplate       = "credential exchange failed: %w"
	relayRejectedErrorTemplate       = "credential request rejected: %s"
	relayInstallErrorTemplate        = "unable to install credential relay: %w"
)

// ErrChannelPathMissing indicates the relay ran without a channel path in its environment.
var ErrChannelPathMissing = errors.New(channelPathMissingMessage)

// RelayConfiguration is the typed form of the environment side channel handed to git.
type RelayConfiguration struct {
	ChannelPath     string
	InterpreterPath string
	RelayScriptPath string
}

// Environment renders the configuration for a username/password exchange through GIT_ASKPASS.
func (configuration RelayConfiguration) Environment() map[string]string {
	return map[string]string{
		gitAskPassEnvironmentName:      configuration.RelayScriptPath,
		ChannelPathEnvironmentName:     configuration.ChannelPath,
		InterpreterPathEnvironmentName: configuration.InterpreterPath,
		RelayPathEnvironmentName:       configuration.RelayScriptPath,
	}
}

// SSHEnvironment renders the configuration for an SSH identity: the key is used for this
// invocation only and passphrase or host-key prompts go through SSH_ASKPASS.
func (configuration RelayConfiguration) SSHEnvironment(keyPath string) map[string]string {
	return map[string]string{
		sshAskPassEnvironmentName:        configuration.RelayScriptPath,
		sshAskPassRequireEnvironmentName: sshAskPassRequireForceValue,
		displayEnvironmentName:           displayPlaceholderValue,
		gitSSHCommandEnvironmentName:     fmt.Sprintf(gitSSHCommandTemplateConstant, shellQuote(keyPath)),
		ChannelPathEnvironmentName:       configuration.ChannelPath,
		InterpreterPathEnvironmentName:   configuration.InterpreterPath,
		RelayPathEnvironmentName:         configuration.RelayScriptPath,
	}
}

// InstallRelayScript writes the askpass shim that re-enters the interpreter's relay subcommand.
// The script holds no secrets; it only names the environment variable carrying the interpreter.
func InstallRelayScript(directory string) (string, error) {
	if mkdirError := os.MkdirAll(directory, relayDirectoryPermissions); mkdirError != nil {
		return "", fmt.Errorf(relayInstallErrorTemplate, mkdirError)
	}

	scriptPath := filepath.Join(directory, relayScriptFileNameConstant)
	scriptContent := fmt.Sprintf(relayScriptContentTemplate, InterpreterPathEnvironmentName, RelaySubcommandName)
	if writeError := os.WriteFile(scriptPath, []byte(scriptContent), relayScriptPermissionsConstant); writeError != nil {
		return "", fmt.Errorf(relayInstallErrorTemplate, writeError)
	}
	if chmodError := os.Chmod(scriptPath, relayScriptPermissionsConstant); chmodError != nil {
		return "", fmt.Errorf(relayInstallErrorTemplate, chmodError)
	}
	return scriptPath, nil
}

// RequestSecret asks the broker listening on channelPath to answer prompt.
func RequestSecret(executionContext context.Context, channelPath string, prompt string) (string, error) {
	if len(strings.TrimSpace(channelPath)) == 0 {
		return "", ErrChannelPathMissing
	}

	dialer := net.Dialer{}
	connection, dialError := dialer.DialContext(executionContext, unixNetworkConstant, channelPath)
	if dialError != nil {
		return "", fmt.Errorf(relayDialErrorTemplate, dialError)
	}
	defer connection.Close()

	if deadline, hasDeadline := executionContext.Deadline(); hasDeadline {
		_ = connection.SetDeadline(deadline)
	}

	request := relayRequest{Kind: ClassifyPrompt(prompt), Prompt: prompt}
	if encodeError := json.NewEncoder(connection).Encode(request); encodeError != nil {
		return "", fmt.Errorf(relayExchangeErrorTemplate, encodeError)
	}

	responseLine, readError := bufio.NewReader(connection).ReadBytes('\n')
	if readError != nil && len(responseLine) == 0 {
		return "", fmt.Errorf(relayExchangeErrorTemplate, readError)
	}

	var response relayResponse
	if decodeError := json.Unmarshal(responseLine, &response); decodeError != nil {
		return "", fmt.Errorf(relayExchangeErrorTemplate, decodeError)
	}
	if len(response.Error) > 0 {
		return "", fmt.Errorf(relayRejectedErrorTemplate, response.Error)
	}
	return response.Secret, nil
}

// RunRelay implements the askpass program: it resolves the channel from the environment,
// requests the secret for prompt and prints it on output for git or ssh to read.
func RunRelay(executionContext context.Context, prompt string, lookupEnvironment func(string) (string, bool), output io.Writer) error {
	channelPath, _ := lookupEnvironment(ChannelPathEnvironmentName)
	secret, requestError := RequestSecret(executionContext, channelPath, prompt)
	if requestError != nil {
		return requestError
	}
	_, writeError := fmt.Fprintln(output, secret)
	return writeError
}

func shellQuote(value string) string {
	return singleQuoteConstant + strings.ReplaceAll(value, singleQuoteConstant, escapedSingleQuoteConstant) + singleQuoteConstant
}
