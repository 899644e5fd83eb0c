package app

import "github.com/urfave/cli/v2"

var (
	periodFlag = &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Set the reporting period: today, yesterday, week, month, year, 7days, 30days, all-time",
	}

	startFlag = &cli.StringFlag{
		Name:  "start",
		Usage: "Set the start of a custom date range (e.g. '2024-06-01', 'last monday')",
	}

	endFlag = &cli.StringFlag{
		Name:  "end",
		Usage: "Set the end of a custom date range. Defaults to the present moment",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output in JSON format",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	dateFlag = &cli.StringFlag{
		Name:    "date",
		Aliases: []string{"d"},
		Usage:   "The calendar day the entry applies to (e.g. '2024-06-03', 'yesterday'). Defaults to today",
	}

	typeFlag = &cli.StringFlag{
		Name:    "type",
		Aliases: []string{"t"},
		Usage:   "The day type: work, vacation, half_day_vacation, sick_leave, compensatory, training, holiday",
	}

	startTimeFlag = &cli.StringFlag{
		Name:  "start-time",
		Usage: "Clock-in time for a work day (e.g. '09:00')",
	}

	endTimeFlag = &cli.StringFlag{
		Name:  "end-time",
		Usage: "Clock-out time for a work day (e.g. '17:30')",
	}

	breakFlag = &cli.UintFlag{
		Name:  "break",
		Usage: "Unpaid break in minutes",
	}

	bonusFlag = &cli.Float64Flag{
		Name:  "bonus",
		Usage: "Bonus amount for the day",
	}

	noteFlag = &cli.StringFlag{
		Name:    "note",
		Aliases: []string{"n"},
		Usage:   "Free-form note attached to the day",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Export format: csv or pdf",
		Value:   "csv",
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Path of the exported file",
	}
)
