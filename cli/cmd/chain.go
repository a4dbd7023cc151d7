package cmd

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ErrChainInvalid is returned by commands that find a broken chain, so the
// process exits non-zero.
var ErrChainInvalid = errors.New("chain verification failed")

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the hash chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.ledger.Verify()
			if err != nil {
				return err
			}
			renderVerification(cmd.OutOrStdout(), res)
			if !res.Valid {
				return ErrChainInvalid
			}
			return nil
		},
	}
}

func newTamperCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tamper",
		Short: "Scan every block and report all integrity findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			findings, err := a.ledger.DetectTampering()
			if err != nil {
				return err
			}
			if err := renderFindings(cmd.OutOrStdout(), findings); err != nil {
				return err
			}
			if len(findings) > 0 {
				return ErrChainInvalid
			}
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show chain statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.ledger.GetChainStats()
			if err != nil {
				return err
			}
			if output == "json" {
				return renderJSON(cmd.OutOrStdout(), st)
			}
			return renderStats(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "plain", "Output format: plain|json")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <destination>",
		Short: "Write an audit copy of the chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ledger.ExportChain(args[0]); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("Blockchain exported to %s", args[0]))
			return nil
		},
	}
}

func newRollbackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Restore the chain from its backup generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ledger.RollbackToBackup(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintln("Blockchain restored from backup"))
			res, err := a.ledger.Verify()
			if err != nil {
				return err
			}
			renderVerification(cmd.OutOrStdout(), res)
			return nil
		},
	}
}
