package repl

import "strings"

// Completer suggests command names.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"ECHO message",
			"GET key",
			"INFO [replication]",
			"PING",
			"PSYNC replid offset",
			"REPLCONF listening-port port",
			"REPLCONF capa capability",
			"SET key value [px milliseconds]",
			"exit",
			"help [prefix]",
			"quit",
		},
	}
}

// Complete returns the commands whose name starts with prefix. The match
// ignores case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToLower(cmd), prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
