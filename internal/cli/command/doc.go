// Package command defines the replikv-cli commands using urfave/cli/v2.
//
//   - root.go: application, global flags, shared helpers
//   - kv.go: PING, ECHO, GET, SET, INFO, PSYNC and raw commands
//   - admin.go: health and replication status over the admin HTTP API
//   - shell.go: interactive mode, the default when no command is given
package command
