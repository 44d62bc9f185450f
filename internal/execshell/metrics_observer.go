package execshell

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespaceConstant          = "gitbridge"
	metricsSubsystemConstant          = "git"
	commandsTotalMetricNameConstant   = "commands_total"
	commandsTotalMetricHelpConstant   = "Number of git invocations by subcommand and outcome."
	commandDurationMetricNameConstant = "command_duration_seconds"
	commandDurationMetricHelpConstant = "Wall-clock duration of git invocations that ran to completion."
	metricsLabelSubcommandConstant    = "subcommand"
	metricsLabelOutcomeConstant       = "outcome"
	metricsLabelExitCodeConstant      = "exit_code"
	outcomeSucceededConstant          = "succeeded"
	outcomeFailedConstant             = "failed"
	outcomeNotStartedConstant         = "not_started"
	unknownSubcommandLabelConstant    = "none"
)

// MetricsObserver records git invocation counts and durations in prometheus collectors.
type MetricsObserver struct {
	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

// NewMetricsObserver creates the collectors and registers them with the supplied registerer.
func NewMetricsObserver(registerer prometheus.Registerer) (*MetricsObserver, error) {
	observer := &MetricsObserver{
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespaceConstant,
			Subsystem: metricsSubsystemConstant,
			Name:      commandsTotalMetricNameConstant,
			Help:      commandsTotalMetricHelpConstant,
		}, []string{metricsLabelSubcommandConstant, metricsLabelOutcomeConstant, metricsLabelExitCodeConstant}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespaceConstant,
			Subsystem: metricsSubsystemConstant,
			Name:      commandDurationMetricNameConstant,
			Help:      commandDurationMetricHelpConstant,
			Buckets:   prometheus.DefBuckets,
		}, []string{metricsLabelSubcommandConstant}),
	}

	if registerer != nil {
		for _, collector := range []prometheus.Collector{observer.commandsTotal, observer.commandDuration} {
			if registrationError := registerer.Register(collector); registrationError != nil {
				return nil, registrationError
			}
		}
	}

	return observer, nil
}

// CommandStarted implements CommandEventObserver.
func (observer *MetricsObserver) CommandStarted(ShellCommand) {}

// CommandCompleted counts the finished invocation and records its duration.
func (observer *MetricsObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	subcommand := subcommandLabel(command)
	outcome := outcomeSucceededConstant
	if result.ExitCode != 0 {
		outcome = outcomeFailedConstant
	}
	observer.commandsTotal.WithLabelValues(subcommand, outcome, strconv.Itoa(result.ExitCode)).Inc()
	observer.commandDuration.WithLabelValues(subcommand).Observe(result.Duration.Seconds())
}

// CommandExecutionFailed counts invocations whose process never ran.
func (observer *MetricsObserver) CommandExecutionFailed(command ShellCommand, _ error) {
	observer.commandsTotal.WithLabelValues(subcommandLabel(command), outcomeNotStartedConstant, emptyStringConstant).Inc()
}

func subcommandLabel(command ShellCommand) string {
	subcommand, _ := SplitGitSubcommand(command.Details.Arguments)
	if len(subcommand) == 0 {
		return unknownSubcommandLabelConstant
	}
	return subcommand
}
