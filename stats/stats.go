// Package stats aggregates day records into period totals and balances
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/timeutil"
	"github.com/jgehrke/worklog/internal/ui"
	"github.com/jgehrke/worklog/store"
)

// Summary holds the aggregate figures for a reporting period.
type Summary struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	TotalHours      float64   `json:"total_hours"`
	OvertimeSeconds int64     `json:"overtime_seconds"`
	ExpectedSeconds int64     `json:"expected_seconds"`
	WorkDays        int       `json:"work_days"`
	AverageHours    float64   `json:"average_hours"`

	// VacationDaysUsed counts credits inside the reporting period, while
	// VacationDaysRemaining is always a whole-year figure for the calendar
	// year containing today, independent of the period.
	VacationDaysUsed      float64 `json:"vacation_days_used"`
	VacationDaysRemaining float64 `json:"vacation_days_remaining"`

	// CumulativeOvertimeSeconds is the lifetime overtime balance up to and
	// including the year containing the period's end.
	CumulativeOvertimeSeconds int64 `json:"cumulative_overtime_seconds"`

	Breakdown []Bucket `json:"breakdown,omitempty"`
}

// Bucket is one row of the period breakdown: weeks for short periods,
// months otherwise.
type Bucket struct {
	Label           string    `json:"label"`
	StartTime       time.Time `json:"start_time"`
	TotalHours      float64   `json:"total_hours"`
	OvertimeSeconds int64     `json:"overtime_seconds"`
	ExpectedSeconds int64     `json:"expected_seconds"`
	WorkDays        int       `json:"work_days"`
}

// Stats computes and renders aggregate figures for a reporting period.
type Stats struct {
	Opts    config.FilterConfig
	DB      store.DB
	Display config.Display

	Schedule config.Schedule
	Clock    timeutil.Clock

	Summary Summary
}

// aggregate sums the derived fields over a set of records. Total hours count
// only clocked work; overtime counts every record, because compensatory and
// training days carry signed overtime deltas of their own.
func aggregate(
	records []*record.DayRecord,
) (totalHours float64, overtime int64, vacationUsed float64, workDays int) {
	for _, r := range records {
		if r.Deleted {
			continue
		}

		if r.DayType == record.Work {
			totalHours += r.TotalHours
			workDays++
		}

		overtime += r.OvertimeSeconds
		vacationUsed += r.DayType.VacationCredit()
	}

	return
}

// ExpectedSeconds sums the standard seconds of every worked weekday in the
// inclusive date range.
func ExpectedSeconds(sched config.Schedule, start, end time.Time) int64 {
	if start.IsZero() || end.Before(start) {
		return 0
	}

	var total int64

	for d := timeutil.RoundToStart(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		total += sched.StandardSecondsFor(timeutil.MondayIndex(d))
	}

	return total
}

// Compute fetches the period's records and fills in the summary.
func (s *Stats) Compute() error {
	if s.Clock == nil {
		s.Clock = timeutil.SystemClock{}
	}

	records, err := s.DB.GetRecords(s.Opts.StartTime, s.Opts.EndTime, false)
	if err != nil {
		return err
	}

	totalHours, overtime, vacationUsed, workDays := aggregate(records)

	s.Summary = Summary{
		StartTime:        s.Opts.StartTime,
		EndTime:          s.Opts.EndTime,
		TotalHours:       totalHours,
		OvertimeSeconds:  overtime,
		ExpectedSeconds:  ExpectedSeconds(s.Schedule, s.Opts.StartTime, s.Opts.EndTime),
		WorkDays:         workDays,
		VacationDaysUsed: vacationUsed,
	}

	if workDays > 0 {
		s.Summary.AverageHours = totalHours / float64(workDays)
	}

	remaining, err := s.vacationDaysRemaining()
	if err != nil {
		return err
	}

	s.Summary.VacationDaysRemaining = remaining

	cumulative, err := s.CumulativeOvertime(s.Opts.EndTime.Year())
	if err != nil {
		return err
	}

	s.Summary.CumulativeOvertimeSeconds = cumulative

	s.Summary.Breakdown = breakdown(
		records,
		s.Schedule,
		s.Opts.StartTime,
		s.Opts.EndTime,
	)

	return nil
}

// breakdown buckets the period by ISO week when it spans five weeks or
// fewer, and by month otherwise. All-time ranges bucket from the first
// record.
func breakdown(
	records []*record.DayRecord,
	sched config.Schedule,
	start, end time.Time,
) []Bucket {
	if len(records) == 0 {
		return nil
	}

	if start.IsZero() {
		start = timeutil.RoundToStart(records[0].Date)
	}

	byWeek := end.Sub(start) <= 5*7*24*time.Hour

	bucketRange := func(t time.Time) (time.Time, time.Time, string) {
		if byWeek {
			ws, we := timeutil.WeekRange(t)
			return ws, we, "Week of " + ws.Format("Jan 02")
		}

		ms, me := timeutil.MonthRange(t)

		return ms, me, ms.Format("January 2006")
	}

	var buckets []Bucket

	index := make(map[string]int)

	for _, r := range records {
		if r.Deleted {
			continue
		}

		bs, be, label := bucketRange(r.Date)

		i, ok := index[label]
		if !ok {
			// clip the expected range to the reporting period
			if bs.Before(start) {
				bs = start
			}

			if be.After(end) {
				be = end
			}

			buckets = append(buckets, Bucket{
				Label:           label,
				StartTime:       bs,
				ExpectedSeconds: ExpectedSeconds(sched, bs, be),
			})

			i = len(buckets) - 1
			index[label] = i
		}

		if r.DayType == record.Work {
			buckets[i].TotalHours += r.TotalHours
			buckets[i].WorkDays++
		}

		buckets[i].OvertimeSeconds += r.OvertimeSeconds
	}

	return buckets
}

// vacationDaysRemaining is the annual allotment minus the credits used in
// the calendar year containing today. It deliberately ignores the reporting
// period: the balance is a whole-year figure.
func (s *Stats) vacationDaysRemaining() (float64, error) {
	start, end := timeutil.YearRange(s.Clock.Now())

	records, err := s.DB.GetRecords(start, end, false)
	if err != nil {
		return 0, err
	}

	_, _, used, _ := aggregate(records)

	return s.Schedule.AnnualVacationDays - used, nil
}

// CumulativeOvertime returns the running lifetime overtime balance gated at
// year boundaries: everything strictly before January 1st of the given year,
// plus that year's own aggregate. It is recomputed on demand rather than
// incrementally maintained.
func (s *Stats) CumulativeOvertime(year int) (int64, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)

	before, err := s.DB.GetRecords(
		time.Time{},
		yearStart.Add(-time.Second),
		false,
	)
	if err != nil {
		return 0, err
	}

	inYear, err := s.DB.GetRecords(
		yearStart,
		time.Date(year, time.December, 31, 23, 59, 59, 0, time.Local),
		false,
	)
	if err != nil {
		return 0, err
	}

	_, beforeOvertime, _, _ := aggregate(before)
	_, yearOvertime, _, _ := aggregate(inYear)

	return beforeOvertime + yearOvertime, nil
}

func (s *Stats) ToJSON() ([]byte, error) {
	return json.Marshal(s.Summary)
}

func (s *Stats) formatHours(hours float64) string {
	if s.Display.ClockFormat == config.ClockHourMin {
		return timeutil.FormatHours(hours)
	}

	return fmt.Sprintf("%.2f", hours)
}

// Render prints the summary as a table.
func (s *Stats) Render() {
	rows := [][]string{
		{"METRIC", "VALUE"},
		{"Period", fmt.Sprintf(
			"%s to %s",
			s.Summary.StartTime.Format("Jan 02, 2006"),
			s.Summary.EndTime.Format("Jan 02, 2006"),
		)},
		{"Work days", fmt.Sprintf("%d", s.Summary.WorkDays)},
		{"Total hours", s.formatHours(s.Summary.TotalHours)},
		{"Expected hours", s.formatHours(
			float64(s.Summary.ExpectedSeconds) / timeutil.SecondsInAnHour,
		)},
		{"Overtime", ui.Signed(
			s.Summary.OvertimeSeconds,
			timeutil.FormatSeconds(s.Summary.OvertimeSeconds),
		)},
		{"Average hours/day", s.formatHours(s.Summary.AverageHours)},
		{"Vacation days used", fmt.Sprintf("%.1f", s.Summary.VacationDaysUsed)},
		{"Vacation days left", fmt.Sprintf(
			"%.1f",
			s.Summary.VacationDaysRemaining,
		)},
		{"Cumulative overtime", ui.Signed(
			s.Summary.CumulativeOvertimeSeconds,
			timeutil.FormatSeconds(s.Summary.CumulativeOvertimeSeconds),
		)},
	}

	ui.PrintTable(rows, os.Stdout)

	if len(s.Summary.Breakdown) > 1 {
		s.renderBreakdown()
	}
}

func (s *Stats) renderBreakdown() {
	rows := [][]string{
		{"PERIOD", "WORK DAYS", "HOURS", "EXPECTED", "OVERTIME"},
	}

	for _, b := range s.Summary.Breakdown {
		rows = append(rows, []string{
			b.Label,
			fmt.Sprintf("%d", b.WorkDays),
			s.formatHours(b.TotalHours),
			s.formatHours(float64(b.ExpectedSeconds) / timeutil.SecondsInAnHour),
			ui.Signed(
				b.OvertimeSeconds,
				timeutil.FormatSeconds(b.OvertimeSeconds),
			),
		})
	}

	ui.PrintTable(rows, os.Stdout)
}
