// Command kvs-driver is the scenario-driven CLI entrypoint for the KVS
// engine: see internal/cli/command for flag and subcommand definitions.
package main
