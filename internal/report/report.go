// Package report renders dry-run plans and run summaries for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"

	"dirsort/pkg/types"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// Plan writes a dry-run plan: the folders that will be created followed by
// every planned transfer.
func Plan(w io.Writer, plan *types.Plan) {
	if plan == nil || plan.Empty() {
		fmt.Fprintln(w, "Dry run: nothing needs to move.")
		return
	}

	fmt.Fprintln(w, "Dry run plan:")
	for _, folder := range plan.SortedFolders() {
		fmt.Fprintf(w, "  make sure this folder exists: %s\n", folder)
	}

	rows := make([][]string, 0, len(plan.Operations))
	for i, op := range plan.Operations {
		rows = append(rows, []string{strconv.Itoa(i + 1), op.Source, op.Destination})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Source", "Destination"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))

	if len(plan.Skipped) > 0 {
		fmt.Fprintf(w, "%d %s could not be read and will be left alone.\n", len(plan.Skipped), plural(len(plan.Skipped), "entry", "entries"))
	}
}

// Summary writes the outcome counts of a run.
func Summary(w io.Writer, s *types.Summary) {
	rows := [][]string{
		{types.Succeeded.String(), strconv.Itoa(s.Counts[types.Succeeded])},
		{types.SkippedVanished.String(), strconv.Itoa(s.Counts[types.SkippedVanished])},
		{types.SkippedPermission.String(), strconv.Itoa(s.Counts[types.SkippedPermission])},
		{types.SkippedOtherError.String(), strconv.Itoa(s.Counts[types.SkippedOtherError])},
	}
	if left := s.Planned - s.Attempted(); left > 0 {
		rows = append(rows, []string{"not attempted", strconv.Itoa(left)})
	}
	fmt.Fprintln(w, renderTable([]string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))

	verb := "moved"
	if s.Mode == "Copy" {
		verb = "copied"
	}
	fmt.Fprintf(w, "%d of %d %s %s (%s).\n", s.Succeeded(), s.Planned, plural(s.Planned, "file", "files"), verb, humanize.Bytes(uint64(s.Bytes)))

	for _, f := range s.Failures {
		fmt.Fprintf(w, "  %s: %s (%v)\n", f.Operation.Source, f.Outcome, f.Err)
	}

	if line := Reaped(s.Reaped); line != "" {
		fmt.Fprintln(w, line)
	}
}

// Reaped is the line reporting deleted empty directories, or "" for none.
func Reaped(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("Deleted %d empty %s.", n, plural(n, "directory", "directories"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
