package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/replikv/internal/cli/connection"
	"github.com/yndnr/replikv/internal/cli/output"
	"github.com/yndnr/replikv/internal/infra/buildinfo"
)

const clientKey = "client"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "replikv-cli",
		Usage:   "command-line client for replikv",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			InfoCommand(),
			PsyncCommand(),
			RawCommand(),
			HealthCommand(),
			ReplicationCommand(),
			ShellCommand(),
		},
		Action: shellAction,
		Before: func(c *cli.Context) error {
			if !output.ValidFormat(c.String("output")) {
				return fmt.Errorf("invalid output format %q (text, json, yaml)", c.String("output"))
			}
			c.App.Metadata[clientKey] = connection.NewClient(c.String("server"), c.Duration("timeout"))
			return nil
		},
		After: func(c *cli.Context) error {
			if client, ok := c.App.Metadata[clientKey].(*connection.Client); ok {
				return client.Close()
			}
			return nil
		},
		Metadata: map[string]any{},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "replikv server address",
			EnvVars: []string{"REPLIKV_SERVER"},
			Value:   "127.0.0.1:6379",
		},
		&cli.StringFlag{
			Name:    "admin",
			Aliases: []string{"a"},
			Usage:   "admin HTTP address for health and replication",
			EnvVars: []string{"REPLIKV_ADMIN"},
			Value:   "127.0.0.1:9121",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json, yaml",
			Value:   string(output.FormatText),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "connect and request timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// GetClient returns the RESP client created in Before.
func GetClient(c *cli.Context) *connection.Client {
	if client, ok := c.App.Metadata[clientKey].(*connection.Client); ok {
		return client
	}
	client := connection.NewClient(c.String("server"), c.Duration("timeout"))
	c.App.Metadata[clientKey] = client
	return client
}

// requestContext bounds one CLI request by the --timeout flag.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = connection.DefaultTimeout
	}
	return context.WithTimeout(c.Context, timeout+time.Second)
}

// printResult writes data in the selected output format.
func printResult(c *cli.Context, data any) error {
	f := output.NewFormatter(output.Format(c.String("output")))
	return f.Format(c.App.Writer, data)
}
