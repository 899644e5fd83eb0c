// Package record defines the day records that make up a work log
package record

import (
	"time"

	"github.com/google/uuid"
)

// DayType classifies a logged day.
type DayType string

const (
	Work            DayType = "work"
	Vacation        DayType = "vacation"
	HalfDayVacation DayType = "half_day_vacation"
	SickLeave       DayType = "sick_leave"
	Compensatory    DayType = "compensatory"
	Training        DayType = "training"
	Holiday         DayType = "holiday"
)

// Types lists all day types in display order.
var Types = []DayType{
	Work,
	Vacation,
	HalfDayVacation,
	SickLeave,
	Compensatory,
	Training,
	Holiday,
}

// Clocked reports whether the day type carries start/end times and a break.
// Only regular work days are clocked.
func (d DayType) Clocked() bool {
	return d == Work
}

// VacationCredit returns how many vacation days the type consumes from the
// annual allotment.
func (d DayType) VacationCredit() float64 {
	switch d {
	case Vacation:
		return 1.0
	case HalfDayVacation:
		return 0.5
	default:
		return 0
	}
}

// AccruesStandardHours reports whether the day is measured against the
// standard hours for its weekday.
func (d DayType) AccruesStandardHours() bool {
	return d == Work || d == Compensatory || d == Training
}

func (d DayType) String() string {
	switch d {
	case Work:
		return "Work"
	case Vacation:
		return "Vacation"
	case HalfDayVacation:
		return "Half-day vacation"
	case SickLeave:
		return "Sick leave"
	case Compensatory:
		return "Compensatory"
	case Training:
		return "Training"
	case Holiday:
		return "Holiday"
	}

	return string(d)
}

// DayRecord is one entity per calendar day with recorded activity.
//
// TotalHours and OvertimeSeconds are cached derivations: they can always be
// recomputed from the other fields plus the current schedule and are never
// independently authoritative.
type DayRecord struct {
	ID              string     `json:"id"`
	Date            time.Time  `json:"date"`
	DayType         DayType    `json:"day_type"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	BreakDuration   int64      `json:"break_duration"`
	TotalHours      float64    `json:"total_hours"`
	OvertimeSeconds int64      `json:"overtime_seconds"`
	BonusAmount     float64    `json:"bonus_amount"`
	Note            string     `json:"note,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ModifiedAt      time.Time  `json:"modified_at"`
	Deleted         bool       `json:"deleted"`
}

// New initialises a day record for the given date and type.
func New(date time.Time, dayType DayType) *DayRecord {
	now := time.Now()

	return &DayRecord{
		ID:         uuid.NewString(),
		Date:       date,
		DayType:    dayType,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// Valid reports whether the record may be committed. Clocked records need an
// end time after the start time, a non-negative break, and a non-negative
// bonus; every other day type is always valid. The derivation engine never
// rejects input itself, so this gate must run before any create or update.
func (r *DayRecord) Valid() bool {
	if !r.DayType.Clocked() {
		return true
	}

	if r.StartTime == nil || r.EndTime == nil {
		return false
	}

	return r.EndTime.After(*r.StartTime) &&
		r.BreakDuration >= 0 &&
		r.BonusAmount >= 0
}
