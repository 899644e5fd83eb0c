package config

import (
	"errors"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/jgehrke/worklog/internal/timeutil"
)

var (
	errInvalidDateRange = errors.New(
		"the start time must be earlier than the end time",
	)

	errInvalidPeriod = errors.New(
		"please provide a valid time period",
	)
)

// Period is a named reporting range.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodWeek      Period = "week"
	PeriodMonth     Period = "month"
	PeriodYear      Period = "year"
	Period7Days     Period = "7days"
	Period30Days    Period = "30days"
	PeriodAllTime   Period = "all-time"
)

var PeriodCollection = []Period{
	PeriodToday,
	PeriodYesterday,
	PeriodWeek,
	PeriodMonth,
	PeriodYear,
	Period7Days,
	Period30Days,
	PeriodAllTime,
}

// FilterConfig represents a configuration to filter day records
// in the database by date range.
type FilterConfig struct {
	StartTime time.Time
	EndTime   time.Time
	Period    Period
}

// timeRange returns the start and end time according to the
// specified time period.
func timeRange(period Period) (start, end time.Time) {
	now := time.Now()

	start = timeutil.RoundToStart(now)
	end = timeutil.RoundToEnd(now)

	switch period {
	case PeriodToday:
		return
	case PeriodYesterday:
		start = timeutil.RoundToStart(now.AddDate(0, 0, -1))
		end = timeutil.RoundToEnd(start)
	case PeriodWeek:
		start, end = timeutil.WeekRange(now)
	case PeriodMonth:
		start, end = timeutil.MonthRange(now)
	case PeriodYear:
		start, end = timeutil.YearRange(now)
	case Period7Days:
		start = timeutil.RoundToStart(now.AddDate(0, 0, -6))
	case Period30Days:
		start = timeutil.RoundToStart(now.AddDate(0, 0, -29))
	case PeriodAllTime:
		start = time.Time{}
	}

	return
}

// setFilterConfig updates the filter configuration from command-line arguments.
func setFilterConfig(ctx *cli.Context) (*FilterConfig, error) {
	filterCfg := &FilterConfig{}

	period := Period(strings.TrimSpace(ctx.String("period")))

	if period != "" && !slices.Contains(PeriodCollection, period) {
		return nil, errInvalidPeriod
	}

	if period != "" {
		filterCfg.Period = period
		filterCfg.StartTime, filterCfg.EndTime = timeRange(period)

		return filterCfg, nil
	}

	start := ctx.String("start")
	if start != "" {
		dt, err := dateparser.Parse(nil, start)
		if err != nil {
			return nil, err
		}

		filterCfg.StartTime = dt.Time
	}

	now := time.Now()

	if now.After(filterCfg.StartTime) {
		filterCfg.EndTime = now
	} else {
		filterCfg.EndTime = timeutil.RoundToEnd(filterCfg.StartTime)
	}

	end := ctx.String("end")
	if end != "" {
		dt, err := dateparser.Parse(nil, end)
		if err != nil {
			return nil, err
		}

		filterCfg.EndTime = dt.Time
	}

	if filterCfg.StartTime.IsZero() {
		// default to the current month when no range is given
		filterCfg.Period = PeriodMonth
		filterCfg.StartTime, filterCfg.EndTime = timeutil.MonthRange(now)

		return filterCfg, nil
	}

	if filterCfg.EndTime.Before(filterCfg.StartTime) {
		return nil, errInvalidDateRange
	}

	return filterCfg, nil
}

// Filter initializes and returns a configuration to filter day records from
// command-line arguments.
func Filter(ctx *cli.Context) *FilterConfig {
	cfg, err := setFilterConfig(ctx)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	return cfg
}
