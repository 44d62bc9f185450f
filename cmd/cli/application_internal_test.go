package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitbridge/internal/credentials"
	"github.com/temirov/gitbridge/internal/execshell"
	"github.com/temirov/gitbridge/internal/gitcli"
	"github.com/temirov/gitbridge/internal/repository"
)

const (
	testVersionOutputConstant   = "git version 2.43.0\n"
	testUserNameConstant        = "Ada Lovelace"
	testUserEmailConstant       = "ada@example.com"
	testUnexpectedStderrMessage = "fatal: unexpected invocation"
)

type scriptedCommandRunner struct {
	mutex     sync.Mutex
	responses map[string]execshell.ExecutionResult
	commands  []execshell.ShellCommand
}

func newScriptedCommandRunner(responses map[string]execshell.ExecutionResult) *scriptedCommandRunner {
	scripted := map[string]execshell.ExecutionResult{
		"--version":                  {StandardOutput: testVersionOutputConstant},
		"config --global user.name":  {StandardOutput: testUserNameConstant + "\n"},
		"config --global user.email": {StandardOutput: testUserEmailConstant + "\n"},
	}
	for key, value := range responses {
		scripted[key] = value
	}
	return &scriptedCommandRunner{responses: scripted}
}

func (runner *scriptedCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	runner.commands = append(runner.commands, command)

	arguments := command.Details.Arguments
	if len(arguments) >= 2 && arguments[0] == "-c" {
		arguments = arguments[2:]
	}
	if result, found := runner.responses[strings.Join(arguments, " ")]; found {
		return result, nil
	}
	return execshell.ExecutionResult{ExitCode: 1, StandardError: testUnexpectedStderrMessage}, nil
}

func (runner *scriptedCommandRunner) subcommands() []string {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	subcommands := make([]string, 0, len(runner.commands))
	for _, command := range runner.commands {
		subcommand, _ := execshell.SplitGitSubcommand(command.Details.Arguments)
		subcommands = append(subcommands, subcommand)
	}
	return subcommands
}

func newTestApplication(testInstance *testing.T, runner execshell.CommandRunner, environment map[string]string) (*Application, *bytes.Buffer) {
	testInstance.Helper()
	application := NewApplication()
	application.commandRunner = runner
	application.environmentLookup = func(name string) (string, bool) {
		value, found := environment[name]
		return value, found
	}
	output := &bytes.Buffer{}
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(&bytes.Buffer{})
	return application, output
}

func executeCommand(application *Application, arguments ...string) error {
	application.rootCommand.SetArgs(arguments)
	return application.Execute()
}

func TestVersionCommandReportsToolConfiguration(testInstance *testing.T) {
	application, output := newTestApplication(testInstance, newScriptedCommandRunner(nil), nil)

	require.NoError(testInstance, executeCommand(application, "version"))

	var decoded repository.ToolConfiguration
	require.NoError(testInstance, json.Unmarshal(output.Bytes(), &decoded))
	require.Equal(testInstance, "2.43.0", decoded.Version)
	require.Equal(testInstance, defaultGitExecutableConstant, decoded.ExecutablePath)
	require.NotNil(testInstance, decoded.User)
	require.Equal(testInstance, testUserNameConstant, decoded.User.Name)
	require.Equal(testInstance, testUserEmailConstant, decoded.User.Email)
}

func TestCommandsFailWhenGitIsUnavailable(testInstance *testing.T) {
	runner := newScriptedCommandRunner(map[string]execshell.ExecutionResult{
		"--version": {ExitCode: 127, StandardError: "git: not found"},
	})
	application, output := newTestApplication(testInstance, runner, nil)

	executionError := executeCommand(application, "status")
	require.ErrorIs(testInstance, executionError, ErrGitUnavailable)
	require.Empty(testInstance, output.String())
}

func TestStatusCommandRendersJSON(testInstance *testing.T) {
	repositoryDirectory := testInstance.TempDir()
	runner := newScriptedCommandRunner(map[string]execshell.ExecutionResult{
		"rev-list HEAD --count":                         {StandardOutput: "3\n"},
		"ls-files --cached --others --exclude-standard": {StandardOutput: "README.md\n"},
		"status --porcelain -b":                         {StandardOutput: "## main...origin/main [ahead 1]\n M README.md\n"},
	})
	application, output := newTestApplication(testInstance, runner, nil)

	require.NoError(testInstance, executeCommand(application, "status", "--repository", repositoryDirectory))

	var decoded map[string]any
	require.NoError(testInstance, json.Unmarshal(output.Bytes(), &decoded))
	commits := decoded["commits"].(map[string]any)
	require.EqualValues(testInstance, 3, commits["total"])
	require.EqualValues(testInstance, 1, commits["ahead"])
	branches := decoded["branches"].(map[string]any)
	require.Equal(testInstance, "main", branches["local"])
	require.Equal(testInstance, "origin/main", branches["remote"])
	files := decoded["files"].(map[string]any)
	require.Contains(testInstance, files, "README.md")

	for _, command := range runner.commands {
		if command.Details.Arguments[2] == "--version" || command.Details.Arguments[2] == "config" {
			continue
		}
		require.Equal(testInstance, repositoryDirectory, command.Details.WorkingDirectory)
	}
}

func TestRemotesCommandRendersYAML(testInstance *testing.T) {
	runner := newScriptedCommandRunner(map[string]execshell.ExecutionResult{
		"remote -v": {StandardOutput: "origin\thttps://example.com/repo.git (fetch)\norigin\thttps://example.com/repo.git (push)\n"},
	})
	application, output := newTestApplication(testInstance, runner, nil)

	require.NoError(testInstance, executeCommand(application, "remotes", "--output", "yaml"))

	var decoded map[string]map[string]string
	require.NoError(testInstance, yaml.Unmarshal(output.Bytes(), &decoded))
	require.Equal(testInstance, "https://example.com/repo.git", decoded["origin"]["fetch"])
	require.Equal(testInstance, "https://example.com/repo.git", decoded["origin"]["push"])
}

func TestFileCommandPrintsRawContent(testInstance *testing.T) {
	runner := newScriptedCommandRunner(map[string]execshell.ExecutionResult{
		"show v1.0:docs/notes.txt": {StandardOutput: "line one\nline two\n"},
	})
	application, output := newTestApplication(testInstance, runner, nil)

	require.NoError(testInstance, executeCommand(application, "file", "docs/notes.txt", "--treeish", "v1.0"))
	require.Equal(testInstance, "line one\nline two\n", output.String())
}

func TestDeleteRemoteBranchIsRejected(testInstance *testing.T) {
	runner := newScriptedCommandRunner(nil)
	application, _ := newTestApplication(testInstance, runner, nil)

	executionError := executeCommand(application, "delete-branch", "origin/feature", "--remote")
	require.ErrorIs(testInstance, executionError, repository.ErrRemoteBranchDeletionUnsupported)
	require.NotContains(testInstance, runner.subcommands(), "branch")
}

func TestPushSurfacesClassifiedFailure(testInstance *testing.T) {
	runner := newScriptedCommandRunner(map[string]execshell.ExecutionResult{
		"push origin HEAD:main --porcelain": {
			ExitCode:       1,
			StandardOutput: "To https://example.com/repo.git\n!\tHEAD:refs/heads/main\t[rejected] (non-fast-forward)\nDone\n",
			StandardError:  "error: failed to push some refs to 'https://example.com/repo.git'\n",
		},
	})
	application, _ := newTestApplication(testInstance, runner, nil)

	executionError := executeCommand(application, "push", "origin", "main")
	require.Error(testInstance, executionError)
	require.Equal(testInstance, gitcli.ErrorKindPushRejected, gitcli.KindOf(executionError))
}

func TestPullRequiresRemoteAndBranchTogether(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance, newScriptedCommandRunner(nil), nil)

	require.ErrorIs(testInstance, executeCommand(application, "pull", "origin"), errPullArguments)
}

func TestAuthSpecResolution(testInstance *testing.T) {
	testCases := []struct {
		name         string
		flags        authenticationFlags
		environment  map[string]string
		expectedSpec *credentials.AuthSpec
	}{
		{
			name: "NoCredentials",
		},
		{
			name:        "UsernameAndPassword",
			flags:       authenticationFlags{username: "ada"},
			environment: map[string]string{passwordEnvironmentNameConstant: "s3cret"},
			expectedSpec: &credentials.AuthSpec{
				Username: "ada",
				Password: "s3cret",
			},
		},
		{
			name:        "KeyWithPassphrase",
			flags:       authenticationFlags{sshKeyPath: "/keys/id_ed25519", acceptHostKey: true},
			environment: map[string]string{passphraseEnvironmentNameConstant: "phrase"},
			expectedSpec: &credentials.AuthSpec{
				KeyPath:               "/keys/id_ed25519",
				Passphrase:            "phrase",
				AcceptUnknownHostKeys: true,
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			application, _ := newTestApplication(subTest, newScriptedCommandRunner(nil), testCase.environment)
			require.Equal(subTest, testCase.expectedSpec, application.authSpec(testCase.flags))
		})
	}
}

func TestFetchWithCredentialsInstallsRelay(testInstance *testing.T) {
	relayDirectory := testInstance.TempDir()
	socketDirectory, directoryError := os.MkdirTemp("", "gbcli")
	require.NoError(testInstance, directoryError)
	testInstance.Cleanup(func() { _ = os.RemoveAll(socketDirectory) })
	testInstance.Setenv("GITBRIDGE_CREDENTIALS_RELAY_DIRECTORY", relayDirectory)
	testInstance.Setenv("GITBRIDGE_CREDENTIALS_SOCKET_DIRECTORY", socketDirectory)

	runner := newScriptedCommandRunner(map[string]execshell.ExecutionResult{
		"fetch origin": {},
	})
	application, _ := newTestApplication(testInstance, runner, map[string]string{passwordEnvironmentNameConstant: "s3cret"})
	application.executablePathLookup = func() (string, error) { return "/usr/local/bin/gitbridge", nil }

	require.NoError(testInstance, executeCommand(application, "fetch", "origin", "--username", "ada"))

	var fetchCommand execshell.ShellCommand
	for _, command := range runner.commands {
		if subcommand, _ := execshell.SplitGitSubcommand(command.Details.Arguments); subcommand == "fetch" {
			fetchCommand = command
		}
	}
	environment := fetchCommand.Details.EnvironmentVariables
	require.Equal(testInstance, filepath.Join(relayDirectory, "gitbridge-askpass.sh"), environment["GIT_ASKPASS"])
	require.Equal(testInstance, "/usr/local/bin/gitbridge", environment[credentials.InterpreterPathEnvironmentName])
	require.True(testInstance, strings.HasPrefix(environment[credentials.ChannelPathEnvironmentName], socketDirectory))
	require.NoFileExists(testInstance, environment[credentials.ChannelPathEnvironmentName])
	require.FileExists(testInstance, filepath.Join(relayDirectory, "gitbridge-askpass.sh"))
}

func TestAskPassRequiresChannel(testInstance *testing.T) {
	application, output := newTestApplication(testInstance, newScriptedCommandRunner(nil), nil)

	require.ErrorIs(testInstance, executeCommand(application, credentials.RelaySubcommandName, "Password for 'https://ada@example.com':"), credentials.ErrChannelPathMissing)
	require.Empty(testInstance, output.String())
}

func TestMetricsTextfileIsWritten(testInstance *testing.T) {
	metricsPath := filepath.Join(testInstance.TempDir(), "gitbridge.prom")
	testInstance.Setenv("GITBRIDGE_METRICS_TEXTFILE_PATH", metricsPath)

	application, _ := newTestApplication(testInstance, newScriptedCommandRunner(nil), nil)
	require.NoError(testInstance, executeCommand(application, "version"))

	content, readError := os.ReadFile(metricsPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(content), "gitbridge_git_commands_total")
}
