// Package accounting derives total hours and overtime for day records from
// the user's standard schedule
package accounting

import (
	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/timeutil"
)

// ScheduleProvider supplies the current schedule. It is consulted on every
// derivation so that schedule edits apply retroactively to re-derived records.
type ScheduleProvider interface {
	Schedule() config.Schedule
}

// Engine recomputes the derived fields of a day record.
type Engine struct {
	Schedule ScheduleProvider
	Clock    timeutil.Clock
}

func New(schedule ScheduleProvider, clock timeutil.Clock) *Engine {
	return &Engine{Schedule: schedule, Clock: clock}
}

// standardSeconds returns the expected seconds for the record's weekday.
// Zero unless the day type is measured against the schedule and the weekday
// is marked as worked.
func (e *Engine) standardSeconds(r *record.DayRecord) int64 {
	if r.DayType != record.Work && r.DayType != record.Compensatory {
		return 0
	}

	sched := e.Schedule.Schedule()

	return sched.StandardSecondsFor(timeutil.MondayIndex(r.Date))
}

// Derive recomputes TotalHours and OvertimeSeconds in place, normalises
// fields that do not apply to the day type, and bumps ModifiedAt.
//
// Malformed input never produces an error: a work record missing either
// timestamp yields zeroed totals. Callers are expected to gate commits with
// record.Valid instead.
func (e *Engine) Derive(r *record.DayRecord) {
	standard := e.standardSeconds(r)

	r.TotalHours = 0
	r.OvertimeSeconds = 0

	switch r.DayType {
	case record.Work:
		if r.StartTime != nil && r.EndTime != nil {
			workedSeconds := r.EndTime.Sub(*r.StartTime).Seconds() -
				float64(r.BreakDuration)

			r.TotalHours = workedSeconds / timeutil.SecondsInAnHour
			r.OvertimeSeconds = timeutil.Round(workedSeconds) - standard
		}

	case record.Compensatory:
		// a compensatory day spends a full standard day of banked credit
		r.OvertimeSeconds = -standard

	case record.Training:
		sched := e.Schedule.Schedule()
		r.TotalHours = float64(
			sched.StandardSecondsFor(timeutil.MondayIndex(r.Date)),
		) / timeutil.SecondsInAnHour

	case record.Vacation,
		record.HalfDayVacation,
		record.SickLeave,
		record.Holiday:
	}

	if !r.DayType.Clocked() {
		r.StartTime = nil
		r.EndTime = nil
		r.BreakDuration = 0
		r.BonusAmount = 0
	}

	r.ModifiedAt = e.Clock.Now()
}
