package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var demoRecords = [][3]string{
	{"P001", "D001", "Fever|Paracetamol"},
	{"P002", "D001", "Cold|Amoxicillin"},
	{"P001", "D002", "Diabetes|Metformin"},
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Append sample records, verify and print stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, pterm.Info.Sprintln("Adding sample records..."))
			for _, r := range demoRecords {
				hash, err := a.ledger.AddRecord(r[0], r[1], r[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s / %s  %s  %s\n", r[0], r[1], r[2], shortHash(hash))
			}

			res, err := a.ledger.Verify()
			if err != nil {
				return err
			}
			renderVerification(out, res)

			st, err := a.ledger.GetChainStats()
			if err != nil {
				return err
			}
			return renderStats(out, st)
		},
	}
}
