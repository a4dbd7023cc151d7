package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"medledger/core/block"
	"medledger/core/chain"
	"medledger/core/scan"
)

func shortHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:16] + "..."
}

// renderRecords prints blocks as a table, oldest first.
func renderRecords(w io.Writer, recs []block.Block) error {
	if len(recs) == 0 {
		fmt.Fprint(w, pterm.Info.Sprintln("No records found"))
		return nil
	}
	data := pterm.TableData{{"Index", "Patient", "Doctor", "Treatment", "Time", "Hash"}}
	for _, b := range recs {
		data = append(data, []string{
			strconv.FormatInt(b.Index, 10),
			b.PatientID,
			b.DoctorID,
			b.Treatment,
			b.TimeReadable,
			shortHash(b.Hash),
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

func renderJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func renderVerification(w io.Writer, res scan.Result) {
	if res.Valid {
		fmt.Fprint(w, pterm.Success.Sprintfln("Blockchain is valid (%d blocks)", res.Blocks))
		return
	}
	fmt.Fprint(w, pterm.Error.Sprintfln("Blockchain is invalid at block %d: %s", res.BlockIndex, res.Reason))
	fmt.Fprintf(w, "  expected: %s\n  actual:   %s\n", res.Expected, res.Actual)
}

func renderFindings(w io.Writer, findings []scan.Finding) error {
	if len(findings) == 0 {
		fmt.Fprint(w, pterm.Success.Sprintln("No tampering detected"))
		return nil
	}
	fmt.Fprint(w, pterm.Warning.Sprintfln("%d tampering finding(s)", len(findings)))
	data := pterm.TableData{{"Block", "Reason", "Expected", "Actual"}}
	for _, f := range findings {
		data = append(data, []string{strconv.Itoa(f.BlockIndex), f.Reason, shortHash(f.Expected), shortHash(f.Actual)})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

func optString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// renderStats prints the stats summary inside a titled box.
func renderStats(w io.Writer, st chain.Stats) error {
	valid := pterm.LightGreen("valid")
	if !st.IsValid {
		valid = pterm.LightRed("INVALID")
	}
	data := pterm.TableData{
		{"Total blocks", strconv.Itoa(st.TotalBlocks)},
		{"Integrity", valid},
		{"First block", optString(st.FirstBlock)},
		{"Last block", optString(st.LastBlock)},
		{"Patients", strconv.Itoa(st.TotalPatients)},
		{"Doctors", strconv.Itoa(st.TotalDoctors)},
		{"Size", fmt.Sprintf("%d bytes (%.2f KB)", st.ChainSizeBytes, st.ChainSizeKB)},
	}
	table, err := pterm.DefaultTable.WithData(data).Srender()
	if err != nil {
		return err
	}
	box := pterm.DefaultBox.WithHorizontalPadding(2).WithTitle(pterm.LightCyan("|CHAIN STATS|")).WithTitleTopCenter()
	fmt.Fprintln(w, box.Sprint(table))
	return nil
}
