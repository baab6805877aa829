// Package cli constructs the gitdeps command-line interface. It wires the
// Cobra command hierarchy to the Viper configuration loader and the zap
// logger, and registers the manifest rewrite command.
package cli
