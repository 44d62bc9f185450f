// Package utils holds the configuration loader and logger factory shared by the gitbridge CLI.
//
// ConfigurationLoader layers the embedded defaults, an optional YAML file and GITBRIDGE_
// environment variables through Viper. LoggerFactory builds zap loggers for standard error and
// an optional rotating file.
package utils
