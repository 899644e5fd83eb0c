package report

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/timeutil"
)

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Date", 24},
	{"Type", 34},
	{"Start", 16},
	{"End", 16},
	{"Break", 16},
	{"Hours", 20},
	{"Overtime", 22},
	{"Note", 42},
}

// ToPDF writes the records as a tabular PDF report at path, with a totals
// footer covering the whole set.
func ToPDF(
	path string,
	records []*record.DayRecord,
	opts Options,
) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(opts.Title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, opts.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)

	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}

	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)

	var (
		totalHours float64
		overtime   int64
	)

	for _, r := range records {
		if r.DayType == record.Work {
			totalHours += r.TotalHours
		}

		overtime += r.OvertimeSeconds

		cells := []string{
			r.Date.Format("2006-01-02"),
			r.DayType.String(),
			formatClockTime(r.StartTime),
			formatClockTime(r.EndTime),
			formatBreak(r.BreakDuration),
			opts.formatHours(r.TotalHours),
			timeutil.FormatSeconds(r.OvertimeSeconds),
			r.Note,
		}

		for i, cell := range cells {
			pdf.CellFormat(
				pdfColumns[i].width, 6, cell, "1", 0, "L", false, 0, "",
			)
		}

		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(
		0, 8,
		fmt.Sprintf(
			"Total: %s hours, overtime %s",
			opts.formatHours(totalHours),
			timeutil.FormatSeconds(overtime),
		),
		"", 1, "L", false, 0, "",
	)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing pdf file: %w", err)
	}

	return nil
}
