// Package app defines the worklog command-line interface
package app

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/jgehrke/worklog/config"
)

const (
	envNoColor        = "NO_COLOR"
	envWorklogNoColor = "WORKLOG_NO_COLOR"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the worklog app instance.
func Get() *cli.App {
	worklogApp := &cli.App{
		Name: "worklog",
		Usage: `
		Worklog is a personal work-hours tracker for the command-line. Running it
		without a command starts the day's session timer; subcommands manage past
		days, statistics, exports, and replication.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name: "log",
				Usage: `
				Record or overwrite a day entry by hand. Opens an interactive form
				unless the day type is given through flags`,
				Action: logAction,
				Flags: []cli.Flag{
					dateFlag,
					typeFlag,
					startTimeFlag,
					endTimeFlag,
					breakFlag,
					bonusFlag,
					noteFlag,
				},
			},
			{
				Name:   "edit",
				Usage:  "Edit the day entry for a date in an interactive form",
				Action: editAction,
				Flags:  []cli.Flag{dateFlag},
			},
			{
				Name:   "delete",
				Usage:  "Delete the day entries within a time period",
				Action: deleteAction,
				Flags:  []cli.Flag{periodFlag, startFlag, endFlag},
			},
			{
				Name:   "list",
				Usage:  "List the day entries within a time period",
				Action: listAction,
				Flags:  []cli.Flag{periodFlag, startFlag, endFlag, jsonFlag},
			},
			{
				Name: "stats",
				Usage: `
				Report totals, overtime balance, and the vacation ledger. Defaults
				to the current month`,
				Action: statsAction,
				Flags:  []cli.Flag{periodFlag, startFlag, endFlag, jsonFlag},
			},
			{
				Name:   "export",
				Usage:  "Export the day entries within a time period as CSV or PDF",
				Action: exportAction,
				Flags: []cli.Flag{
					periodFlag,
					startFlag,
					endFlag,
					formatFlag,
					outputFlag,
				},
			},
			{
				Name:   "status",
				Usage:  "Print the status of the running session timer",
				Action: statusAction,
				Flags:  []cli.Flag{jsonFlag},
			},
			{
				Name:   "toggle",
				Usage:  "Pause or resume the running session timer from outside",
				Action: toggleAction,
			},
			{
				Name:   "end-day",
				Usage:  "Ask the running session timer to end the day",
				Action: endDayAction,
			},
			{
				Name:   "sync",
				Usage:  "Push local changes to the configured backend, then pull",
				Action: syncAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags:  []cli.Flag{noColorFlag},
		Action: defaultAction,
		Before: beforeAction,
	}

	return worklogApp
}

func beforeAction(ctx *cli.Context) error {
	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envWorklogNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}
