// Package main provides the entry point for deckshare-server.
//
// deckshare-server shares one directory tree over HTTPS for a host plugin
// and exits on its own once clients stop browsing it.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/deckshare/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
