package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/replikv/internal/cli/connection"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Keys    int    `json:"keys"`
}

type replicationResponse struct {
	Role       string `json:"role"`
	ReplID     string `json:"replid,omitempty"`
	ReplOffset int64  `json:"repl_offset"`
	Primary    string `json:"primary,omitempty"`
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server health over the admin HTTP API",
		Action: healthAction,
	}
}

// ReplicationCommand returns the replication command.
func ReplicationCommand() *cli.Command {
	return &cli.Command{
		Name:    "replication",
		Aliases: []string{"repl"},
		Usage:   "Show replication status over the admin HTTP API",
		Action:  replicationAction,
	}
}

func healthAction(c *cli.Context) error {
	client := connection.NewHTTPClient(c.String("admin"))

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	var result healthResponse
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if c.String("output") != "text" {
		return printResult(c, result)
	}
	return printResult(c, map[string]string{
		"status":  result.Status,
		"version": result.Version,
		"uptime":  result.Uptime,
		"keys":    fmt.Sprint(result.Keys),
		"target":  client.BaseURL(),
	})
}

func replicationAction(c *cli.Context) error {
	client := connection.NewHTTPClient(c.String("admin"))

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/replication")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var result replicationResponse
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if c.String("output") != "text" {
		return printResult(c, result)
	}
	kv := map[string]string{
		"role":        result.Role,
		"repl_offset": fmt.Sprint(result.ReplOffset),
	}
	if result.ReplID != "" {
		kv["replid"] = result.ReplID
	}
	if result.Primary != "" {
		kv["primary"] = result.Primary
	}
	return printResult(c, kv)
}
