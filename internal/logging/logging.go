// Package logging configures the process-wide structured logger
package logging

import (
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init routes slog output as JSON to a rotating log file and installs the
// logger as the process default. The log level can be raised through
// WORKLOG_LOG_LEVEL; everything else about the logger is fixed so that log
// lines stay machine-parseable.
func Init(logFilePath string) {
	writer := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level(),
	})

	slog.SetDefault(slog.New(handler))
}

func level() slog.Level {
	switch strings.ToLower(os.Getenv("WORKLOG_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
