package app

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/timeutil"
	"github.com/jgehrke/worklog/internal/ui"
	"github.com/jgehrke/worklog/internal/widget"
)

const noRecordsMsg = "No entries found for the specified time range"

// printRecordsTable prints a day-entry table to the command-line.
func printRecordsTable(w io.Writer, records []*record.DayRecord) {
	tableBody := make([][]string, len(records))

	for i := range records {
		r := records[i]

		start := ""
		if r.StartTime != nil {
			start = r.StartTime.Format("15:04")
		}

		end := ""
		if r.EndTime != nil {
			end = r.EndTime.Format("15:04")
		}

		row := []string{
			r.Date.Format("Mon, Jan 02 2006"),
			r.DayType.String(),
			start,
			end,
			fmt.Sprintf("%.2f", r.TotalHours),
			ui.Signed(
				r.OvertimeSeconds,
				timeutil.FormatSeconds(r.OvertimeSeconds),
			),
			r.Note,
		}

		tableBody[i] = row
	}

	tableBody = append([][]string{
		{"DATE", "TYPE", "START", "END", "HOURS", "OVERTIME", "NOTE"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}

// listRecords prints out a table of day entries.
func listRecords(records []*record.DayRecord) error {
	if len(records) == 0 {
		pterm.Info.Println(noRecordsMsg)
		return nil
	}

	printRecordsTable(os.Stdout, records)

	return nil
}

// printStatus prints the session projection.
func printStatus(p widget.Projection) {
	tableBody := [][]string{
		{"FIELD", "VALUE"},
		{"State", string(p.State)},
		{"Started", p.StartedAt.Local().Format("15:04:05")},
		{"Elapsed", widget.FormatClock(p.ElapsedSeconds)},
		{"Remaining", widget.FormatClock(p.RemainingSeconds)},
	}

	ui.PrintTable(tableBody, os.Stdout)
}
