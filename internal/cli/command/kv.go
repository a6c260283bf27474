package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/replikv/internal/cli/output"
	"github.com/yndnr/replikv/pkg/resp"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:   "ping",
		Usage:  "Check that the server answers",
		Action: func(c *cli.Context) error { return do(c, "PING") },
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message",
		ArgsUsage: "MESSAGE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("echo takes exactly one argument")
			}
			return do(c, "ECHO", c.Args().First())
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get takes exactly one argument")
			}
			return do(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key, optionally expiring",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "px",
				Usage: "expire after this many milliseconds",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("set takes exactly two arguments")
			}
			args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
			if c.IsSet("px") {
				args = append(args, "px", strconv.FormatUint(c.Uint64("px"), 10))
			}
			return do(c, args...)
		},
	}
}

// InfoCommand returns the info command.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show server information",
		ArgsUsage: "[SECTION]",
		Action: func(c *cli.Context) error {
			args := []string{"INFO"}
			if c.NArg() > 0 {
				args = append(args, c.Args().First())
			}
			reply, err := send(c, args...)
			if err != nil {
				return err
			}
			body, ok := reply.(resp.BulkString)
			if !ok {
				return printReply(c, reply)
			}
			if output.Format(c.String("output")) == output.FormatText {
				return printResult(c, strings.TrimRight(string(body), "\r\n"))
			}
			return printResult(c, ParseInfo(string(body)))
		},
	}
}

// PsyncCommand returns the psync command, which requests a full resync
// and reports the snapshot received.
func PsyncCommand() *cli.Command {
	return &cli.Command{
		Name:  "psync",
		Usage: "Request a full resync and report the snapshot size",
		Action: func(c *cli.Context) error {
			reply, err := send(c, "PSYNC", "?", "-1")
			if err != nil {
				return err
			}
			status, ok := reply.(resp.SimpleString)
			if !ok || !strings.HasPrefix(string(status), "FULLRESYNC ") {
				return printReply(c, reply)
			}

			ctx, cancel := requestContext(c)
			defer cancel()
			payload, err := GetClient(c).ReadPayload(ctx)
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			return printResult(c, resp.Array{status, payload})
		},
	}
}

// RawCommand returns the raw command, which sends its arguments as is.
func RawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Aliases:   []string{"exec"},
		Usage:     "Send an arbitrary command",
		ArgsUsage: "COMMAND [ARG...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("raw needs a command")
			}
			return do(c, c.Args().Slice()...)
		},
	}
}

// ParseInfo parses "key:value" lines of an INFO reply. Section headers
// and blank lines are skipped.
func ParseInfo(body string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			out[k] = v
		}
	}
	return out
}

// do sends one command and prints the reply.
func do(c *cli.Context, args ...string) error {
	reply, err := send(c, args...)
	if err != nil {
		return err
	}
	return printReply(c, reply)
}

func send(c *cli.Context, args ...string) (resp.Message, error) {
	ctx, cancel := requestContext(c)
	defer cancel()
	return GetClient(c).Do(ctx, args...)
}

// printReply prints a reply; error replies also set exit code 1.
func printReply(c *cli.Context, reply resp.Message) error {
	if err := printResult(c, reply); err != nil {
		return err
	}
	if _, ok := reply.(resp.Error); ok {
		return cli.Exit("", 1)
	}
	return nil
}
