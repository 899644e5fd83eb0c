package app

import (
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/jgehrke/worklog/internal/record"
)

var errNotANumber = errors.New("enter a non-negative number")

func validateNonNegativeNumber(s string) error {
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return errNotANumber
	}

	return nil
}

func validateClock(s string) error {
	if s == "" {
		return nil
	}

	_, err := time.Parse("15:04", s)
	if err != nil {
		return errors.New("enter a time as HH:MM")
	}

	return nil
}

// recordForm edits a day record interactively and writes the result back.
// Clock times apply to the record's date; the break is entered in minutes.
func recordForm(r *record.DayRecord) error {
	var (
		startTime string
		endTime   string
		breakMins string
		bonus     string
	)

	if r.StartTime != nil {
		startTime = r.StartTime.Format("15:04")
	}

	if r.EndTime != nil {
		endTime = r.EndTime.Format("15:04")
	}

	if r.BreakDuration > 0 {
		breakMins = strconv.FormatInt(r.BreakDuration/60, 10)
	}

	if r.BonusAmount > 0 {
		bonus = strconv.FormatFloat(r.BonusAmount, 'f', -1, 64)
	}

	typeOptions := make([]huh.Option[record.DayType], 0, len(record.Types))
	for _, dayType := range record.Types {
		typeOptions = append(
			typeOptions,
			huh.NewOption(dayType.String(), dayType),
		)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[record.DayType]().
				Title("Day type").
				Options(typeOptions...).
				Value(&r.DayType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Start time (HH:MM)").
				Placeholder("09:00").
				Value(&startTime).
				Validate(validateClock),
			huh.NewInput().
				Title("End time (HH:MM)").
				Placeholder("17:30").
				Value(&endTime).
				Validate(validateClock),
			huh.NewInput().
				Title("Break (minutes)").
				Placeholder("30").
				Value(&breakMins).
				Validate(validateNonNegativeNumber),
		).WithHideFunc(func() bool {
			return !r.DayType.Clocked()
		}),
		huh.NewGroup(
			huh.NewInput().
				Title("Bonus (optional)").
				Value(&bonus).
				Validate(validateNonNegativeNumber),
			huh.NewInput().
				Title("Note (optional)").
				Value(&r.Note),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	var err error

	if r.StartTime, err = parseClock(r.Date, startTime); err != nil {
		return err
	}

	if r.EndTime, err = parseClock(r.Date, endTime); err != nil {
		return err
	}

	r.BreakDuration = 0

	if breakMins != "" {
		mins, err := strconv.ParseInt(breakMins, 10, 64)
		if err != nil {
			return err
		}

		r.BreakDuration = mins * 60
	}

	r.BonusAmount = 0

	if bonus != "" {
		amount, err := strconv.ParseFloat(bonus, 64)
		if err != nil {
			return err
		}

		r.BonusAmount = amount
	}

	return nil
}
