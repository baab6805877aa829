package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

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
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	logDirectoryErrorTemplateConstant    = "unable to create log directory %s: %w"
	logFileMaxSizeMegabytesConstant      = 10
	logFileMaxBackupsConstant            = 5
	logFileMaxAgeDaysConstant            = 7
	logDirectoryPermissionsConstant      = 0o755
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

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	logFilePath string
}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// SetLogFile additionally routes log entries to a rotating JSON file at path.
// An empty path disables the file sink.
func (factory *LoggerFactory) SetLogFile(path string) {
	factory.logFilePath = strings.TrimSpace(path)
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[requestedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding

	var buildOptions []zap.Option
	if len(factory.logFilePath) > 0 {
		fileCore, fileCoreError := newRotatingFileCore(factory.logFilePath, configuration.Level)
		if fileCoreError != nil {
			return nil, fileCoreError
		}
		buildOptions = append(buildOptions, zap.WrapCore(func(standardErrorCore zapcore.Core) zapcore.Core {
			return zapcore.NewTee(standardErrorCore, fileCore)
		}))
	}

	logger, buildError := configuration.Build(buildOptions...)
	if buildError != nil {
		return nil, buildError
	}

	return logger, nil
}

func newRotatingFileCore(logFilePath string, level zapcore.LevelEnabler) (zapcore.Core, error) {
	logDirectory := filepath.Dir(logFilePath)
	if mkdirError := os.MkdirAll(logDirectory, logDirectoryPermissionsConstant); mkdirError != nil {
		return nil, fmt.Errorf(logDirectoryErrorTemplateConstant, logDirectory, mkdirError)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    logFileMaxSizeMegabytesConstant,
		MaxBackups: logFileMaxBackupsConstant,
		MaxAge:     logFileMaxAgeDaysConstant,
		Compress:   true,
	}

	return zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(fileWriter),
		level,
	), nil
}
