// Package config is responsible for setting the program config from
// the config file and command-line arguments
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

const Version = "v1.2.0"

var (
	configDir      = "worklog"
	configFileName = "config.yml"
	dbFileName     = "worklog.db"
	sharedDirName  = "shared"
	logFileName    = "worklog.log"
	dbFilePath     string
	configFilePath string
	statusDirPath  string
	logFilePath    string
)

// ClockFormat is the display preference for durations.
type ClockFormat string

const (
	ClockDecimal ClockFormat = "decimal"
	ClockHourMin ClockFormat = "hmm"
)

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

// StatusDirPath is the directory holding the shared timer snapshot and the
// command queue. It is readable by processes that do not own the timer.
func StatusDirPath() string {
	return statusDirPath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// InitializePaths resolves all file paths from the XDG base directories.
// A WORKLOG_ENV value namespaces the files so that development and testing
// never touch real data.
func InitializePaths() {
	env := strings.TrimSpace(os.Getenv("WORKLOG_ENV"))
	if env != "" {
		configFileName = fmt.Sprintf("config_%s.yml", env)
		dbFileName = fmt.Sprintf("worklog_%s.db", env)
		sharedDirName = fmt.Sprintf("shared_%s", env)
		logFileName = fmt.Sprintf("worklog_%s.log", env)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	statusDirPath = filepath.Join(dataDir, sharedDirName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}
