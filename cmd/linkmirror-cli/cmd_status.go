package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server health and readiness",
		Run: func(cmd *cobra.Command, args []string) {
			health, err := apiClient.Health(context.Background())
			if err != nil {
				fatal("health", err)
			}

			ready, readyErr := apiClient.Ready(context.Background())

			if flagFmt == "table" {
				rows := [][]string{
					{"version", health.Version},
					{"uptime", fmt.Sprintf("%.0fs", health.UptimeSeconds)},
				}
				if readyErr != nil {
					rows = append(rows, []string{"ready", "no"})
				} else {
					rows = append(rows, []string{"ready", ready.Status})
					for name, state := range ready.Checks {
						rows = append(rows, []string{name, state})
					}
				}
				formatTable([]string{"FIELD", "VALUE"}, rows)
				return
			}

			out := map[string]any{"health": health}
			if readyErr != nil {
				out["ready"] = map[string]string{"status": "unreachable", "error": readyErr.Error()}
			} else {
				out["ready"] = ready
			}
			output(out, health.Status)
		},
	}
}
