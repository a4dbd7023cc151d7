package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"medledger/cli/api"
)

func newStatusCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running server's status",
		Example: `  medledger status
  medledger status --output json --server http://ledger:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := api.NewClient(a.cfg.CLI.ServerURL).GetStatus(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if output == "json" {
				return renderJSON(out, status)
			}
			fmt.Fprintf(out, "Status: %s\nBlocks: %d\nChain valid: %v\nVersion: %s (API %s)\nUptime: %ds\n",
				status.Status, status.BlockCount, status.ChainValid, status.Version, status.APIVersion, status.Uptime)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "plain", "Output format: plain|json")
	return cmd
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Query a running server's health summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := api.NewClient(a.cfg.CLI.ServerURL).GetHealthMetrics(cmd.Context())
			if err != nil {
				return err
			}
			m := health.Metrics
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Node Health: %s\n", health.Status)
			fmt.Fprintf(out, "Uptime: %ds\n", m.UptimeSeconds)
			fmt.Fprintf(out, "Blocks: %d\n", m.BlockCount)
			fmt.Fprintf(out, "Chain Size: %d bytes\n", m.ChainSizeBytes)
			fmt.Fprintf(out, "CPU Load: %.2f%%\n", m.CPULoadPercent)
			fmt.Fprintf(out, "Memory Usage: %.2f MB\n", m.MemoryMB)
			fmt.Fprintf(out, "Disk Free: %.2f MB\n", m.DiskFreeMB)
			fmt.Fprintf(out, "Last Block Time: %s\n", m.LastBlockTime)
			return nil
		},
	}
}

func newLivenessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "liveness",
		Short: "Check server liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alive, err := api.NewClient(a.cfg.CLI.ServerURL).GetLiveness(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Liveness: %v\n", alive)
			return nil
		},
	}
}

func newReadinessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "readiness",
		Short: "Check server readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ready, reason, err := api.NewClient(a.cfg.CLI.ServerURL).GetReadiness(cmd.Context())
			if err != nil {
				return err
			}
			if !ready {
				fmt.Fprint(cmd.OutOrStdout(), pterm.Warning.Sprintfln("Readiness: false (%s)", reason))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Readiness: %v\n", ready)
			return nil
		},
	}
}
