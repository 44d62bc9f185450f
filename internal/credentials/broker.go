package credentials

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	unixNetworkConstant                  = "unix"
	socketFileNameTemplateConstant       = "gitbridge-%s.sock"
	socketListenErrorTemplateConstant    = "unable to open credential channel %s: %w"
	socketDirectoryErrorTemplateConstant = "unable to prepare credential channel directory %s: %w"
	secretUnavailableTemplateConstant    = "no %s available for this operation"
	malformedRequestMessageConstant      = "malformed credential request"
	connectionDeadlineConstant           = 30 * time.Second
	logFieldChannelPathConstant          = "channel_path"
	logFieldPromptKindConstant           = "prompt_kind"
	channelOpenedMessageConstant         = "credential channel opened"
	channelReleasedMessageConstant       = "credential channel released"
	secretRequestedMessageConstant       = "credential requested"
	secretUnavailableMessageConstant     = "credential request could not be answered"
	socketDirectoryPermissionsConstant   = 0o700
)

// Broker hands out per-invocation credential channels.
type Broker interface {
	Acquire(executionContext context.Context, auth AuthSpec) (*Channel, error)
}

// Channel is an ephemeral credential endpoint owned by one git invocation.
type Channel struct {
	Path        string
	releaseOnce sync.Once
	releaseFunc func() error
	releaseErr  error
}

// NewChannel wraps a path and a release function; Release invokes releaseFunc at most once.
func NewChannel(path string, releaseFunc func() error) *Channel {
	return &Channel{Path: path, releaseFunc: releaseFunc}
}

// Release tears the channel down. Repeated calls return the first result.
func (channel *Channel) Release() error {
	channel.releaseOnce.Do(func() {
		if channel.releaseFunc != nil {
			channel.releaseErr = channel.releaseFunc()
		}
	})
	return channel.releaseErr
}

// SocketBroker serves credentials over unix-domain sockets created per acquisition.
type SocketBroker struct {
	directory string
	logger    *zap.Logger
}

// NewSocketBroker creates a broker placing sockets under directory, or the OS temp directory when empty.
func NewSocketBroker(directory string, logger *zap.Logger) *SocketBroker {
	if len(strings.TrimSpace(directory)) == 0 {
		directory = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocketBroker{directory: directory, logger: logger}
}

// Acquire opens a fresh socket answering prompts from auth until the channel is released.
func (broker *SocketBroker) Acquire(executionContext context.Context, auth AuthSpec) (*Channel, error) {
	if directoryError := os.MkdirAll(broker.directory, socketDirectoryPermissionsConstant); directoryError != nil {
		return nil, fmt.Errorf(socketDirectoryErrorTemplateConstant, broker.directory, directoryError)
	}

	socketPath := filepath.Join(broker.directory, fmt.Sprintf(socketFileNameTemplateConstant, uuid.NewString()))
	listenConfig := net.ListenConfig{}
	listener, listenError := listenConfig.Listen(executionContext, unixNetworkConstant, socketPath)
	if listenError != nil {
		return nil, fmt.Errorf(socketListenErrorTemplateConstant, socketPath, listenError)
	}
	if chmodError := os.Chmod(socketPath, 0o600); chmodError != nil {
		_ = listener.Close()
		return nil, fmt.Errorf(socketListenErrorTemplateConstant, socketPath, chmodError)
	}

	channelLogger := broker.logger.With(zap.String(logFieldChannelPathConstant, socketPath))
	channelLogger.Debug(channelOpenedMessageConstant)

	var serving sync.WaitGroup
	serving.Add(1)
	go func() {
		defer serving.Done()
		broker.serve(listener, auth, channelLogger)
	}()

	return NewChannel(socketPath, func() error {
		closeError := listener.Close()
		serving.Wait()
		if removeError := os.Remove(socketPath); removeError != nil && !errors.Is(removeError, os.ErrNotExist) && closeError == nil {
			closeError = removeError
		}
		channelLogger.Debug(channelReleasedMessageConstant)
		return closeError
	}), nil
}

func (broker *SocketBroker) serve(listener net.Listener, auth AuthSpec, logger *zap.Logger) {
	var connections sync.WaitGroup
	defer connections.Wait()

	for {
		connection, acceptError := listener.Accept()
		if acceptError != nil {
			return
		}
		connections.Add(1)
		go func() {
			defer connections.Done()
			defer connection.Close()
			_ = connection.SetDeadline(time.Now().Add(connectionDeadlineConstant))
			broker.answer(connection, auth, logger)
		}()
	}
}

func (broker *SocketBroker) answer(connection net.Conn, auth AuthSpec, logger *zap.Logger) {
	reader := bufio.NewReader(connection)
	encoder := json.NewEncoder(connection)

	requestLine, readError := reader.ReadBytes('\n')
	if readError != nil && len(requestLine) == 0 {
		return
	}

	var request relayRequest
	if decodeError := json.Unmarshal(requestLine, &request); decodeError != nil {
		_ = encoder.Encode(relayResponse{Error: malformedRequestMessageConstant})
		return
	}

	kind := request.Kind
	if len(kind) == 0 || kind == PromptKindUnknown {
		kind = ClassifyPrompt(request.Prompt)
	}
	logger.Debug(secretRequestedMessageConstant, zap.String(logFieldPromptKindConstant, string(kind)))

	secret, available := auth.secretFor(kind)
	if !available {
		logger.Warn(secretUnavailableMessageConstant, zap.String(logFieldPromptKindConstant, string(kind)))
		_ = encoder.Encode(relayResponse{Error: fmt.Sprintf(secretUnavailableTemplateConstant, kind)})
		return
	}
	_ = encoder.Encode(relayResponse{Secret: secret})
}
