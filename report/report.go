// Package report exports day records as CSV and PDF files
package report

import (
	"fmt"
	"time"

	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/timeutil"
)

// Options control how exported values are rendered.
type Options struct {
	Display config.Display
	Title   string
}

func (o Options) formatHours(hours float64) string {
	if o.Display.ClockFormat == config.ClockHourMin {
		return timeutil.FormatHours(hours)
	}

	return fmt.Sprintf("%.2f", hours)
}

func formatClockTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Local().Format("15:04")
}

func formatBreak(seconds int64) string {
	return fmt.Sprintf("%d", seconds)
}
