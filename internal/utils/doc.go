// Package utils exposes reusable helpers consumed by the CLI.
//
// It houses the ConfigurationLoader, which layers embedded defaults, config
// files and GITDEPS_ environment variables through Viper, and the
// LoggerFactory, which builds zap loggers with an optional rotating file sink.
package utils
