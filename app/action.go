package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markusmobius/go-dateparser"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/accounting"
	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/sharedstate"
	"github.com/jgehrke/worklog/internal/sync"
	"github.com/jgehrke/worklog/internal/timeutil"
	"github.com/jgehrke/worklog/internal/widget"
	"github.com/jgehrke/worklog/report"
	"github.com/jgehrke/worklog/stats"
	"github.com/jgehrke/worklog/store"
	"github.com/jgehrke/worklog/timer"
)

var (
	errInvalidRecord = errors.New(
		"the entry is invalid: a work day needs an end time after the start time and non-negative break and bonus",
	)

	errUnknownDayType = errors.New(
		"unknown day type: expected one of work, vacation, half_day_vacation, sick_leave, compensatory, training, holiday",
	)

	errUnknownFormat = errors.New(
		"unknown export format: expected csv or pdf",
	)
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

func openStore() (store.DB, error) {
	return store.NewClient(config.DBFilePath())
}

func recordHelper(
	ctx *cli.Context,
) ([]*record.DayRecord, store.DB, error) {
	conf := config.Filter(ctx)

	db, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	records, err := db.GetRecords(conf.StartTime, conf.EndTime, false)
	if err != nil {
		return nil, nil, err
	}

	return records, db, nil
}

// parseDate resolves a free-form date argument to the start of a calendar
// day, defaulting to today.
func parseDate(arg string) (time.Time, error) {
	if arg == "" {
		return timeutil.RoundToStart(time.Now()), nil
	}

	dt, err := dateparser.Parse(nil, arg)
	if err != nil {
		return time.Time{}, err
	}

	return timeutil.RoundToStart(dt.Time), nil
}

// parseClock combines an "HH:MM" argument with the record's date.
func parseClock(date time.Time, arg string) (*time.Time, error) {
	if arg == "" {
		return nil, nil
	}

	clock, err := time.Parse("15:04", arg)
	if err != nil {
		return nil, fmt.Errorf("parsing %q as a clock time: %w", arg, err)
	}

	t := time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		date.Location(),
	)

	return &t, nil
}

func parseDayType(arg string) (record.DayType, error) {
	for _, dayType := range record.Types {
		if string(dayType) == arg {
			return dayType, nil
		}
	}

	return "", errUnknownDayType
}

// commitRecord gates, derives, and saves a record.
func commitRecord(db store.DB, r *record.DayRecord) error {
	if !r.Valid() {
		return errInvalidRecord
	}

	engine := accounting.New(config.Get(), timeutil.SystemClock{})
	engine.Derive(r)

	return db.UpdateRecord(r)
}

// logAction handles the log command which records a day entry by hand.
func logAction(ctx *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	date, err := parseDate(ctx.String("date"))
	if err != nil {
		return err
	}

	r, err := db.GetRecord(date)
	if err != nil {
		return err
	}

	if r == nil || r.Deleted {
		r = record.New(date, record.Work)
	}

	if ctx.String("type") == "" {
		if err := recordForm(r); err != nil {
			return err
		}

		if err := commitRecord(db, r); err != nil {
			return err
		}

		pterm.Success.Printfln("entry saved for %s", date.Format("Jan 02, 2006"))

		return nil
	}

	dayType, err := parseDayType(ctx.String("type"))
	if err != nil {
		return err
	}

	r.DayType = dayType

	if r.StartTime, err = parseClock(date, ctx.String("start-time")); err != nil {
		return err
	}

	if r.EndTime, err = parseClock(date, ctx.String("end-time")); err != nil {
		return err
	}

	r.BreakDuration = int64(ctx.Uint("break")) * 60
	r.BonusAmount = ctx.Float64("bonus")
	r.Note = ctx.String("note")

	if err := commitRecord(db, r); err != nil {
		return err
	}

	pterm.Success.Printfln("entry saved for %s", date.Format("Jan 02, 2006"))

	return nil
}

// editAction handles the edit command which updates an existing day entry
// through the interactive form.
func editAction(ctx *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	date, err := parseDate(ctx.String("date"))
	if err != nil {
		return err
	}

	r, err := db.GetRecord(date)
	if err != nil {
		return err
	}

	if r == nil || r.Deleted {
		pterm.Info.Printfln(
			"no entry exists for %s. Use 'worklog log' to create one",
			date.Format("Jan 02, 2006"),
		)

		return nil
	}

	if err := recordForm(r); err != nil {
		return err
	}

	if err := commitRecord(db, r); err != nil {
		return err
	}

	pterm.Success.Printfln("entry updated for %s", date.Format("Jan 02, 2006"))

	return nil
}

// deleteAction handles the delete command which tombstones the day entries
// in a time period.
func deleteAction(ctx *cli.Context) error {
	records, db, err := recordHelper(ctx)
	if err != nil {
		return err
	}

	return delRecords(db, records)
}

// listAction handles the list command and prints a table of the day entries
// within a time period.
func listAction(ctx *cli.Context) error {
	records, _, err := recordHelper(ctx)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(records)
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	return listRecords(records)
}

// statsAction computes the aggregate figures for the specified time period.
func statsAction(ctx *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	opts := config.Filter(ctx)
	cfg := config.Get()

	s := &stats.Stats{
		Opts:     *opts,
		DB:       db,
		Schedule: cfg.Schedule(),
		Display:  cfg.Display(),
	}

	if err := s.Compute(); err != nil {
		return err
	}

	if ctx.Bool("json") {
		b, err := s.ToJSON()
		if err != nil {
			return err
		}

		fmt.Println(string(b))

		return nil
	}

	s.Render()

	return nil
}

// exportAction writes the day entries within a time period to a CSV or PDF
// file.
func exportAction(ctx *cli.Context) error {
	records, _, err := recordHelper(ctx)
	if err != nil {
		return err
	}

	conf := config.Filter(ctx)
	opts := report.Options{
		Display: config.Get().Display(),
		Title: fmt.Sprintf(
			"Work log %s to %s",
			conf.StartTime.Format("Jan 02, 2006"),
			conf.EndTime.Format("Jan 02, 2006"),
		),
	}

	format := ctx.String("format")

	output := ctx.String("output")
	if output == "" {
		output = fmt.Sprintf(
			"worklog-%s.%s",
			conf.StartTime.Format("2006-01-02"),
			format,
		)
	}

	switch format {
	case "csv":
		err = report.ToCSV(output, records, opts)
	case "pdf":
		err = report.ToPDF(output, records, opts)
	default:
		return errUnknownFormat
	}

	if err != nil {
		return err
	}

	pterm.Success.Printfln("exported %d entries to %s", len(records), output)

	return nil
}

// statusAction handles the status command and prints the state of the
// currently running session timer.
func statusAction(ctx *cli.Context) error {
	shared, err := sharedstate.New(config.StatusDirPath())
	if err != nil {
		return err
	}

	cfg := config.Get()

	p, err := widget.Load(shared, cfg.Schedule(), cfg.Display(), time.Now())
	if errors.Is(err, widget.ErrNoSession) {
		pterm.Info.Println("no session is in progress")
		return nil
	}

	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	printStatus(p)

	return nil
}

// pushCommand queues a command for the timer's owning process, refusing when
// no session is live.
func pushCommand(cmd sharedstate.Command) error {
	shared, err := sharedstate.New(config.StatusDirPath())
	if err != nil {
		return err
	}

	cfg := config.Get()

	_, err = widget.Load(shared, cfg.Schedule(), cfg.Display(), time.Now())
	if errors.Is(err, widget.ErrNoSession) {
		pterm.Info.Println("no session is in progress")
		return nil
	}

	if err != nil {
		return err
	}

	if err := shared.PushCommand(cmd); err != nil {
		return err
	}

	pterm.Success.Printfln("sent %s to the running timer", cmd)

	return nil
}

func toggleAction(_ *cli.Context) error {
	return pushCommand(sharedstate.CommandToggle)
}

func endDayAction(_ *cli.Context) error {
	return pushCommand(sharedstate.CommandEndDay)
}

// syncAction drains the outbox to the configured backend and merges remote
// changes back.
func syncAction(ctx *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	cfg := config.Get()

	replicator, err := sync.NewHTTPReplicator(ctx.Context, cfg.Sync())
	if err != nil {
		return err
	}

	svc := &sync.Service{DB: db, Replicator: replicator}

	res, err := svc.Run(ctx.Context)
	if err != nil {
		return err
	}

	pterm.Success.Printfln(
		"pushed %d, pulled %d, applied %d",
		res.Pushed,
		res.Pulled,
		res.Applied,
	)

	return nil
}

// editConfigAction handles the edit-config command which opens the worklog
// config file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	config.Get()

	cmd := exec.Command(editor, config.ConfigFilePath())

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// defaultAction runs the session timer, resuming any session that survived a
// suspension or crash.
func defaultAction(_ *cli.Context) error {
	cfg := config.Get()

	db, err := openStore()
	if err != nil {
		return err
	}

	defer db.Close()

	shared, err := sharedstate.New(config.StatusDirPath())
	if err != nil {
		return err
	}

	t, err := timer.Recover(
		db,
		shared,
		cfg,
		timeutil.SystemClock{},
		cfg.Display(),
	)
	if err != nil {
		return err
	}

	p := tea.NewProgram(t)

	_, err = p.Run()

	return err
}
