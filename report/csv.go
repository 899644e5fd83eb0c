package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/timeutil"
)

var csvHeader = []string{
	"Date",
	"Type",
	"Start",
	"End",
	"Break (s)",
	"Total hours",
	"Overtime",
	"Bonus",
	"Note",
}

// WriteCSV renders the records as CSV rows.
func WriteCSV(
	w io.Writer,
	records []*record.DayRecord,
	opts Options,
) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Date.Format("2006-01-02"),
			r.DayType.String(),
			formatClockTime(r.StartTime),
			formatClockTime(r.EndTime),
			formatBreak(r.BreakDuration),
			opts.formatHours(r.TotalHours),
			timeutil.FormatSeconds(r.OvertimeSeconds),
			fmt.Sprintf("%.2f", r.BonusAmount),
			r.Note,
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// ToCSV writes the records to a CSV file at path.
func ToCSV(
	path string,
	records []*record.DayRecord,
	opts Options,
) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}

	defer f.Close()

	return WriteCSV(f, records, opts)
}
