package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/temirov/gitbridge/internal/utils"
)

const (
	commonConfigurationKeyConstant      = "common"
	commonLogLevelConfigKeyConstant     = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant    = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant      = commonConfigurationKeyConstant + ".log_file"
	gitExecutableConfigKeyConstant      = "git.executable"
	gitCommandTimeoutConfigKeyConstant  = "git.command_timeout"
	credentialsSocketDirectoryConfigKey = "credentials.socket_directory"
	credentialsRelayDirectoryConfigKey  = "credentials.relay_directory"
	credentialsAcceptHostKeysConfigKey  = "credentials.accept_unknown_host_keys"
	metricsTextfileConfigKeyConstant    = "metrics.textfile_path"
	outputFormatConfigKeyConstant       = "output.format"
	defaultGitExecutableConstant        = "git"
	defaultRelayDirectoryNameConstant   = "gitbridge-relay"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common      ApplicationCommonConfiguration      `mapstructure:"common"`
	Git         ApplicationGitConfiguration         `mapstructure:"git"`
	Credentials ApplicationCredentialsConfiguration `mapstructure:"credentials"`
	Metrics     ApplicationMetricsConfiguration     `mapstructure:"metrics"`
	Output      ApplicationOutputConfiguration      `mapstructure:"output"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel          string `mapstructure:"log_level"`
	LogFormat         string `mapstructure:"log_format"`
	LogFile           string `mapstructure:"log_file"`
	LogFileMaxSizeMB  int    `mapstructure:"log_file_max_size_mb"`
	LogFileMaxBackups int    `mapstructure:"log_file_max_backups"`
}

// ApplicationGitConfiguration selects the git executable and bounds each invocation.
type ApplicationGitConfiguration struct {
	Executable     string        `mapstructure:"executable"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// ApplicationCredentialsConfiguration controls where credential channels and the relay live.
type ApplicationCredentialsConfiguration struct {
	SocketDirectory       string `mapstructure:"socket_directory"`
	RelayDirectory        string `mapstructure:"relay_directory"`
	AcceptUnknownHostKeys bool   `mapstructure:"accept_unknown_host_keys"`
}

// ApplicationMetricsConfiguration enables the node-exporter textfile dump of command metrics.
type ApplicationMetricsConfiguration struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

// ApplicationOutputConfiguration selects how structured results are printed.
type ApplicationOutputConfiguration struct {
	Format string `mapstructure:"format"`
}

func defaultConfigurationValues() map[string]any {
	return map[string]any{
		commonLogLevelConfigKeyConstant:     string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant:    "",
		commonLogFileConfigKeyConstant:      "",
		gitExecutableConfigKeyConstant:      defaultGitExecutableConstant,
		gitCommandTimeoutConfigKeyConstant:  time.Duration(0),
		credentialsSocketDirectoryConfigKey: "",
		credentialsRelayDirectoryConfigKey:  "",
		credentialsAcceptHostKeysConfigKey:  false,
		metricsTextfileConfigKeyConstant:    "",
		outputFormatConfigKeyConstant:       string(OutputFormatJSON),
	}
}

func defaultRelayDirectory() string {
	return filepath.Join(os.TempDir(), defaultRelayDirectoryNameConstant)
}
