package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/replikv/internal/cli/output"
	"github.com/yndnr/replikv/pkg/resp"
)

// Doer sends one command and returns its reply.
type Doer interface {
	Do(ctx context.Context, args ...string) (resp.Message, error)
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	client    Doer
	completer *Completer
	history   *History
}

// New creates a REPL that sends commands through client. prompt is usually
// the server address.
func New(client Doer, prompt string, history *History) *REPL {
	if history == nil {
		history = NewHistory("")
	}
	return &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    prompt + "> ",
		client:    client,
		completer: NewCompleter(),
		history:   history,
	}
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		switch lower := strings.ToLower(line); {
		case lower == "exit" || lower == "quit":
			return nil
		case lower == "help" || strings.HasPrefix(lower, "help "):
			r.help(strings.TrimSpace(line[len("help"):]))
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := SplitArgs(line)
	if err != nil {
		return err
	}
	reply, err := r.client.Do(ctx, args...)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.output, output.FormatReply(reply))
	return nil
}

func (r *REPL) help(prefix string) {
	for _, c := range r.completer.Complete(strings.ToUpper(prefix)) {
		fmt.Fprintln(r.output, c)
	}
}

// ErrUnbalancedQuotes is returned by SplitArgs for an unterminated quote.
var ErrUnbalancedQuotes = errors.New("unbalanced quotes")

// SplitArgs splits a line into arguments on whitespace. Double or single
// quotes group words; inside double quotes \" and \\ are unescaped.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case quote == '"' && c == '\\':
			escaped = true
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(c)
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case c == ' ' || c == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(c)
			inArg = true
		}
	}

	if quote != 0 || escaped {
		return nil, ErrUnbalancedQuotes
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
