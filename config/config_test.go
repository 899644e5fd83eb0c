package config

import (
	"strings"
	"testing"

	"github.com/adrg/xdg"
)

func TestInitializePathsNamespacesByEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("WORKLOG_ENV", "testing")

	xdg.Reload()

	InitializePaths()

	if !strings.HasSuffix(DBFilePath(), "worklog_testing.db") {
		t.Errorf("DBFilePath = %q, want a worklog_testing.db suffix",
			DBFilePath())
	}

	if !strings.HasSuffix(ConfigFilePath(), "config_testing.yml") {
		t.Errorf("ConfigFilePath = %q, want a config_testing.yml suffix",
			ConfigFilePath())
	}

	if !strings.HasSuffix(LogFilePath(), "worklog_testing.log") {
		t.Errorf("LogFilePath = %q, want a worklog_testing.log suffix",
			LogFilePath())
	}

	// the shared snapshot/command directory must be namespaced too, so a
	// test run never touches the live timer's files
	if !strings.HasSuffix(StatusDirPath(), "shared_testing") {
		t.Errorf("StatusDirPath = %q, want a shared_testing suffix",
			StatusDirPath())
	}
}
