// Command kvs-driver runs a named KVS scenario against a JSON config file
// and logs its steps as line-delimited structured records.
package main

import (
	"fmt"
	"os"

	"github.com/kvsdriver/kvs/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
