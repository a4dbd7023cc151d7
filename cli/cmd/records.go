package cmd

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"medledger/core/chain"
	"medledger/core/validation"
	"medledger/types/ids"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add <patient-id> <doctor-id> <treatment>",
		Short:   "Append a treatment record",
		Example: `  medledger add P001 D001 "Fever|Paracetamol"`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateFields(args[0], args[1], args[2]); err != nil {
				return err
			}
			hash, err := a.ledger.AddRecord(args[0], args[1], args[2])
			out := cmd.OutOrStdout()
			if errors.Is(err, chain.ErrNotCommitted) {
				fmt.Fprint(out, pterm.Warning.Sprintfln("Computed hash %s but the record was NOT saved", hash))
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprint(out, pterm.Success.Sprintfln("Record added: %s", hash))
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <hash>",
		Short: "Show the record with the given hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ids.FromString(args[0]); err != nil {
				return err
			}
			b, err := a.ledger.GetRecordByHash(args[0])
			if err != nil {
				return err
			}
			return renderJSON(cmd.OutOrStdout(), b)
		},
	}
}

func newPatientCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "patient <patient-id>",
		Short: "List a patient's records in append order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.ledger.GetPatientRecords(args[0])
			if err != nil {
				return err
			}
			return renderRecords(cmd.OutOrStdout(), recs)
		},
	}
}

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor <doctor-id>",
		Short: "List the records authored by a doctor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.ledger.GetDoctorRecords(args[0])
			if err != nil {
				return err
			}
			return renderRecords(cmd.OutOrStdout(), recs)
		},
	}
}

func newRecentCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.ledger.GetRecentRecords(limit)
			if err != nil {
				return err
			}
			return renderRecords(cmd.OutOrStdout(), recs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", chain.DefaultRecentCount, "number of blocks to show")
	return cmd
}
