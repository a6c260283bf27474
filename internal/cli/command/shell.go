package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/replikv/internal/cli/repl"
)

// ShellCommand returns the shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive session (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "history file",
				Value: repl.DefaultHistoryFile(),
			},
		},
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}

	history := repl.NewHistory(c.String("history"))
	if err := history.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: load history: %v\n", err)
	}
	defer func() {
		if err := history.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: save history: %v\n", err)
		}
	}()

	client := GetClient(c)
	return repl.New(client, client.Addr(), history).Run(c.Context)
}
