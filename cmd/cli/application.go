package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitbridge/internal/execshell"
	"github.com/temirov/gitbridge/internal/utils"
	"github.com/temirov/gitbridge/internal/utils/flags"
	pathutils "github.com/temirov/gitbridge/internal/utils/path"
)

const (
	applicationNameConstant                 = "gitbridge"
	applicationShortDescriptionConstant     = "Drive the git CLI and print structured results"
	applicationLongDescriptionConstant      = "gitbridge runs git against a working copy, parses its porcelain output into structured results, and relays credential prompts for remote operations without exposing secrets on the command line."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	outputFlagNameConstant                  = "output"
	outputFlagUsageConstant                 = "Override the configured result encoding."
	repositoryFlagNameConstant              = "repository"
	repositoryFlagShorthandConstant         = "C"
	repositoryFlagUsageConstant             = "Path to the working copy."
	defaultRepositoryPathConstant           = "."
	environmentPrefixConstant               = "GITBRIDGE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	outputFormatErrorTemplateConstant       = "unable to select output format: %w"
	metricsObserverErrorTemplateConstant    = "unable to register command metrics: %w"
	metricsWriteErrorTemplateConstant       = "unable to write metrics textfile: %w"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationSearchPathConstant     = "~/.gitbridge"
)

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	homeExpander          *pathutils.HomeExpander
	commandRunner         execshell.CommandRunner
	metricsRegistry       *prometheus.Registry
	metricsObserver       *execshell.MetricsObserver
	executablePathLookup  func() (string, error)
	environmentLookup     func(string) (string, bool)
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationLoaded   bool
	outputFormat          OutputFormat
	configurationFilePath string
	logLevelChoice        *flags.Choice
	logFormatChoice       *flags.Choice
	outputChoice          *flags.Choice
	repositoryFlagValue   string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	homeExpander := pathutils.NewHomeExpander()
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, homeExpander.Expand(userConfigurationSearchPathConstant)},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:  configurationLoader,
		loggerFactory:        utils.NewLoggerFactory(),
		logger:               zap.NewNop(),
		homeExpander:         homeExpander,
		commandRunner:        execshell.NewOSCommandRunner(),
		metricsRegistry:      prometheus.NewRegistry(),
		executablePathLookup: defaultExecutablePathLookup,
		environmentLookup:    defaultEnvironmentLookup,
		outputFormat:         OutputFormatJSON,
		logLevelChoice:       flags.NewChoice(string(utils.LogLevelWarn), string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)),
		logFormatChoice:      flags.NewChoice("", string(utils.LogFormatStructured), string(utils.LogFormatConsole)),
		outputChoice:         flags.NewChoice(string(OutputFormatJSON), string(OutputFormatJSON), string(OutputFormatYAML)),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.Var(application.logLevelChoice, logLevelFlagNameConstant, application.logLevelChoice.Usage(logLevelFlagUsageConstant))
	persistentFlags.Var(application.logFormatChoice, logFormatFlagNameConstant, application.logFormatChoice.Usage(logFormatFlagUsageConstant))
	persistentFlags.Var(application.outputChoice, outputFlagNameConstant, application.outputChoice.Usage(outputFlagUsageConstant))
	persistentFlags.StringVarP(&application.repositoryFlagValue, repositoryFlagNameConstant, repositoryFlagShorthandConstant, defaultRepositoryPathConstant, repositoryFlagUsageConstant)

	for _, commandFactory := range []func() *cobra.Command{
		application.newVersionCommand,
		application.newStatusCommand,
		application.newFilesCommand,
		application.newLogCommand,
		application.newShowCommand,
		application.newFileCommand,
		application.newDiffCommand,
		application.newRemotesCommand,
		application.newBranchesCommand,
		application.newBranchStatusCommand,
		application.newRemoteBranchCommand,
		application.newInitCommand,
		application.newCommitCommand,
		application.newStageCommand,
		application.newUnstageCommand,
		application.newRevertCommand,
		application.newCheckoutCommand,
		application.newDeleteBranchCommand,
		application.newAbortMergeCommand,
		application.newRemoteAddCommand,
		application.newRemoteRemoveCommand,
		application.newSetUpstreamCommand,
		application.newCloneCommand,
		application.newFetchCommand,
		application.newPullCommand,
		application.newPushCommand,
		application.newAskPassCommand,
	} {
		cobraCommand.AddCommand(commandFactory())
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if metricsError := application.writeMetrics(); metricsError != nil && executionError == nil {
		executionError = metricsError
	}
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.configurationLoaded = true

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelChoice.String()
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatChoice.String()
	}

	if application.persistentFlagChanged(command, outputFlagNameConstant) {
		application.configuration.Output.Format = application.outputChoice.String()
	}

	outputFormat, outputFormatError := ParseOutputFormat(application.configuration.Output.Format)
	if outputFormatError != nil {
		return fmt.Errorf(outputFormatErrorTemplateConstant, outputFormatError)
	}
	application.outputFormat = outputFormat

	logger, loggerCreationError := application.loggerFactory.CreateLogger(utils.LoggerConfiguration{
		Level:              utils.LogLevel(application.configuration.Common.LogLevel),
		Format:             utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
		FilePath:           application.homeExpander.Expand(application.configuration.Common.LogFile),
		FileMaxSizeMB:      application.configuration.Common.LogFileMaxSizeMB,
		FileMaxBackupCount: application.configuration.Common.LogFileMaxBackups,
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	if application.metricsObserver == nil {
		metricsObserver, observerError := execshell.NewMetricsObserver(application.metricsRegistry)
		if observerError != nil {
			return fmt.Errorf(metricsObserverErrorTemplateConstant, observerError)
		}
		application.metricsObserver = metricsObserver
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) writeMetrics() error {
	if !application.configurationLoaded {
		return nil
	}
	textfilePath := strings.TrimSpace(application.configuration.Metrics.TextfilePath)
	if len(textfilePath) == 0 {
		return nil
	}
	if writeError := prometheus.WriteToTextfile(application.homeExpander.Expand(textfilePath), application.metricsRegistry); writeError != nil {
		return fmt.Errorf(metricsWriteErrorTemplateConstant, writeError)
	}
	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
