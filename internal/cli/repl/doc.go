// Package repl implements the interactive shell of replikv-cli.
//
// Each line is split into arguments (double and single quotes group
// words), sent to the server as one command, and the reply is printed in
// redis-cli style. "help [prefix]" lists commands, "exit" or "quit" leave.
package repl
