// Package cli constructs the gitbridge command-line interface. It wires the Cobra command
// hierarchy, the configuration loader and structured logging, and exposes one subcommand per
// repository operation with results printed as JSON or YAML.
package cli
