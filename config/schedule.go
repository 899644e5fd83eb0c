package config

import (
	"errors"
	"os"
	"sync"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"

	"github.com/jgehrke/worklog/internal/timeutil"
)

var errInitFailed = errors.New(
	"unable to initialise worklog settings from the configuration file",
)

const (
	defaultWeeklyHours  = 40.0
	defaultVacationDays = 25.0
)

const (
	configWeeklyHours   = "schedule.weekly_hours"
	configWorkdays      = "schedule.workdays"
	configVacationDays  = "vacation.annual_days"
	configClockFormat   = "display.clock_format"
	configAccentColor   = "display.accent_color"
	configNotify        = "notifications.enabled"
	configSyncEndpoint  = "sync.endpoint"
	configSyncTokenURL  = "sync.token_url"
	configSyncClientID  = "sync.client_id"
	configSyncClientKey = "sync.client_secret"
)

var once sync.Once

// Schedule is the user's standard working schedule. The accounting engine
// treats it as read-only ambient input and re-reads it on every derivation,
// so editing the config file retroactively changes derived totals.
type Schedule struct {
	WeeklyHours        float64
	Workdays           [timeutil.DaysInAWeek]bool // Monday first
	AnnualVacationDays float64
}

// SyncConfig holds the replication endpoint settings.
type SyncConfig struct {
	Endpoint     string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Display holds presentation preferences.
type Display struct {
	ClockFormat ClockFormat
	AccentColor string
	Notify      bool
}

// CountWorkdays returns how many weekdays are marked as worked.
func (s Schedule) CountWorkdays() int {
	var n int

	for _, worked := range s.Workdays {
		if worked {
			n++
		}
	}

	return n
}

// StandardDaySeconds is the expected work duration for a single worked day:
// the weekly target divided across however many weekdays are marked worked,
// not a fixed 5 or 7.
func (s Schedule) StandardDaySeconds() int64 {
	n := s.CountWorkdays()
	if n == 0 {
		return 0
	}

	return timeutil.Round(s.WeeklyHours / float64(n) * timeutil.SecondsInAnHour)
}

// StandardSecondsFor returns the expected seconds for the given Monday-first
// weekday index, or zero when that weekday is not worked.
func (s Schedule) StandardSecondsFor(mondayIdx int) int64 {
	if mondayIdx < 0 || mondayIdx >= timeutil.DaysInAWeek {
		return 0
	}

	if !s.Workdays[mondayIdx] {
		return 0
	}

	return s.StandardDaySeconds()
}

// Provider reads settings from the config file. Accessors re-read viper on
// every call rather than caching, which keeps derivation idempotent against
// the current schedule only.
type Provider struct{}

func (Provider) Schedule() Schedule {
	return Schedule{
		WeeklyHours:        viper.GetFloat64(configWeeklyHours),
		Workdays:           workdayMask(),
		AnnualVacationDays: viper.GetFloat64(configVacationDays),
	}
}

func (Provider) Display() Display {
	format := ClockFormat(viper.GetString(configClockFormat))
	if format != ClockHourMin {
		format = ClockDecimal
	}

	return Display{
		ClockFormat: format,
		AccentColor: viper.GetString(configAccentColor),
		Notify:      viper.GetBool(configNotify),
	}
}

func (Provider) Sync() SyncConfig {
	return SyncConfig{
		Endpoint:     viper.GetString(configSyncEndpoint),
		TokenURL:     viper.GetString(configSyncTokenURL),
		ClientID:     viper.GetString(configSyncClientID),
		ClientSecret: viper.GetString(configSyncClientKey),
	}
}

func workdayMask() [timeutil.DaysInAWeek]bool {
	var mask [timeutil.DaysInAWeek]bool

	days := viper.GetStringSlice(configWorkdays)
	for i := 0; i < len(mask) && i < len(days); i++ {
		mask[i] = days[i] == "true" || days[i] == "1"
	}

	return mask
}

func scheduleDefaults() {
	viper.SetDefault(configWeeklyHours, defaultWeeklyHours)
	viper.SetDefault(
		configWorkdays,
		[]string{"true", "true", "true", "true", "true", "false", "false"},
	)
	viper.SetDefault(configVacationDays, defaultVacationDays)
	viper.SetDefault(configClockFormat, string(ClockDecimal))
	viper.SetDefault(configAccentColor, "#B0DB43")
	viper.SetDefault(configNotify, true)
	viper.SetDefault(configSyncEndpoint, "")
	viper.SetDefault(configSyncTokenURL, "")
	viper.SetDefault(configSyncClientID, "")
	viper.SetDefault(configSyncClientKey, "")
}

func initConfigFile() error {
	viper.SetConfigFile(ConfigFilePath())
	viper.SetConfigType("yaml")

	scheduleDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) ||
			errors.Is(err, os.ErrNotExist) {
			return viper.WriteConfigAs(ConfigFilePath())
		}

		return err
	}

	return nil
}

// Get initialises the configuration file and returns the settings provider.
// Initialisation happens just once no matter how many times it is called.
func Get() *Provider {
	once.Do(func() {
		if err := initConfigFile(); err != nil {
			pterm.Error.Printfln("%s: %s", errInitFailed.Error(), err.Error())
			os.Exit(1)
		}
	})

	return &Provider{}
}
