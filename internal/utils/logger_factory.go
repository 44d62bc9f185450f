package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	defaultLogFileMaxSizeConstant        = 10
	defaultLogFileMaxBackupsConstant     = 3
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerConfiguration describes the logger produced by LoggerFactory.
// An empty Format selects console output on a terminal and structured output otherwise.
// A non-empty FilePath additionally writes structured entries to a rotating file.
type LoggerConfiguration struct {
	Level              LogLevel
	Format             LogFormat
	FilePath           string
	FileMaxSizeMB      int
	FileMaxBackupCount int
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	terminalDetector func(uintptr) bool
}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{terminalDetector: isatty.IsTerminal}
}

// CreateLogger produces a zap.Logger writing to standard error and, optionally, a log file.
func (factory *LoggerFactory) CreateLogger(configuration LoggerConfiguration) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[LogLevel(strings.ToLower(string(configuration.Level)))]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, configuration.Level)
	}

	format := configuration.Format
	if len(format) == 0 {
		format = factory.defaultFormat()
	}

	encoderConfiguration := zap.NewProductionEncoderConfig()
	encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder

	var standardErrorEncoder zapcore.Encoder
	switch format {
	case LogFormatStructured:
		standardErrorEncoder = zapcore.NewJSONEncoder(encoderConfiguration)
	case LogFormatConsole:
		standardErrorEncoder = zapcore.NewConsoleEncoder(encoderConfiguration)
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, configuration.Format)
	}

	levelEnabler := zap.NewAtomicLevelAt(zapLogLevel)
	cores := []zapcore.Core{zapcore.NewCore(standardErrorEncoder, zapcore.Lock(os.Stderr), levelEnabler)}

	if filePath := strings.TrimSpace(configuration.FilePath); len(filePath) > 0 {
		fileSink := &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    positiveOrDefault(configuration.FileMaxSizeMB, defaultLogFileMaxSizeConstant),
			MaxBackups: positiveOrDefault(configuration.FileMaxBackupCount, defaultLogFileMaxBackupsConstant),
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfiguration), zapcore.AddSync(fileSink), levelEnabler))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func (factory *LoggerFactory) defaultFormat() LogFormat {
	detector := factory.terminalDetector
	if detector != nil && detector(os.Stderr.Fd()) {
		return LogFormatConsole
	}
	return LogFormatStructured
}

func positiveOrDefault(value int, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
