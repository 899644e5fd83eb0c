package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/jgehrke/worklog/app"
	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/logging"
)

func run(args []string) error {
	config.InitializePaths()

	logging.Init(config.LogFilePath())

	return app.Get().Run(args)
}

func main() {
	err := run(os.Args)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
