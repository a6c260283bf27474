package main

import (
	"fmt"
	"os"

	"github.com/yndnr/replikv/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "error: %v\n", msg)
		}
		os.Exit(1)
	}
}
