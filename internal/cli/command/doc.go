// Package command defines the kvs-driver CLI using urfave/cli/v2:
//
//   - root.go: App construction, global flags, the run subcommand.
//
// The run subcommand loads a scenario config file, drives the engine
// through internal/scenario, and reports fatal open-time failures with
// the canonical error line on stderr.
package command
