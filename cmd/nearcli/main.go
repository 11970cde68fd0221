// Command nearcli is a minimal command-line client for the NEAR RPC
// surface wired by pkg/nearclient: view a contract, call a method, send
// a transfer, and manage local signing keys.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "nearcli\nGoVersion: %s\n", runtime.Version())
}

func main() {
	cli.VersionPrinter = versionPrinter
	app := cli.NewApp()
	app.Name = "nearcli"
	app.Usage = "command-line client for NEAR Protocol"
	app.Version = "0.1.0"
	app.ErrWriter = os.Stdout
	app.Commands = newCommands()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
