// Package command provides the driver CLI's command definitions.
//
// It uses urfave/cli/v2 for flag and subcommand parsing.
package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kvsdriver/kvs/internal/kvs/defaults"
	"github.com/kvsdriver/kvs/internal/kvs/kvserr"
	"github.com/kvsdriver/kvs/internal/kvs/registry"
	"github.com/kvsdriver/kvs/internal/scenario"
	"github.com/kvsdriver/kvs/internal/telemetry/logger"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// ExitPanic is the process exit code for a fatal open-time engine error
// (a required or malformed defaults file), and also when the scenario
// config file cannot be loaded. Every other scenario outcome, including a
// runtime error surfaced as a logged result, exits 0.
const ExitPanic = 1

// App creates the driver CLI application.
func App() *cli.App {
	reg := registry.New()

	app := &cli.App{
		Name:    "kvs-driver",
		Usage:   "runs a named KVS scenario against a config file and logs its steps",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RunCommand(reg),
		},
	}

	return app
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "minimum log level (debug, info, warn, error)",
			EnvVars: []string{"KVS_LOG_LEVEL"},
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format (json, text)",
			EnvVars: []string{"KVS_LOG_FORMAT"},
			Value:   "json",
		},
	}
}

// RunCommand returns the "run" subcommand: run <scenario-name> --config <path>.
func RunCommand(reg *registry.Registry) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a named scenario",
		ArgsUsage: "<scenario-name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "path to the scenario's JSON config file",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return cli.Exit("error: a scenario name argument is required", 1)
			}

			log, err := logger.New(logger.Config{
				Level:  c.String("log-level"),
				Format: c.String("log-format"),
				Output: c.App.Writer,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: could not initialize logger: %v", err), 1)
			}

			cfg, err := scenario.Load(c.String("config"))
			if err != nil {
				PrintError("could not load scenario config %q: %v", c.String("config"), err)
				os.Exit(ExitPanic)
			}

			err = scenario.Run(log, reg, name, cfg)
			if err == nil {
				return nil
			}

			if isFatalOpenError(err) {
				path := defaults.Path(cfg.KvsParameters.Dir, cfg.KvsParameters.InstanceID)
				PrintError("file %q could not be read: %s", path, kvserr.CodeOf(err))
				os.Exit(ExitPanic)
			}

			PrintError("%s", errorDetail(err))
			return nil
		},
	}
}

// isFatalOpenError reports whether err is one of the two codes that can
// only occur while loading an instance's defaults file at open time.
func isFatalOpenError(err error) bool {
	return kvserr.Is(err, kvserr.KvsFileReadError) || kvserr.Is(err, kvserr.JsonParserError)
}

// errorDetail renders err the way the canonical stderr line expects: a
// *kvserr.Error prints its bare Message, with no code prefix, since the
// code is already carried by the "result" log field.
func errorDetail(err error) string {
	var kerr *kvserr.Error
	if errors.As(err, &kerr) {
		return kerr.Message
	}
	return err.Error()
}

// PrintError prints a canonical "error: ..." line to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
