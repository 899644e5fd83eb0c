// Package timer operates the running work-session timer and handles its
// recovery after the process is suspended or killed
package timer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/accounting"
	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/sharedstate"
	"github.com/jgehrke/worklog/internal/timeutil"
	"github.com/jgehrke/worklog/store"
)

// State is the lifecycle state of a work session.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StatePaused     State = "paused"
	StateFinished   State = "finished"
)

var (
	errNotRunning = errors.New("no session is currently running")
	errNotPaused  = errors.New("no session is currently paused")
	errNoSession  = errors.New("no session is in progress")

	errNonWorkDay = errors.New(
		"today is already logged as a non-work day. Edit the entry before starting a session",
	)
)

// SnapshotKey is the shared-state key under which the latest snapshot is
// published for out-of-process readers.
const SnapshotKey = "snapshot.json"

// Snapshot is the complete durable state of an in-progress session. It is
// sufficient to reconstruct the elapsed time after an arbitrary suspension
// gap, because elapsed time is always recomputed from absolute timestamps.
type Snapshot struct {
	StartTimestamp         time.Time  `json:"start_timestamp"`
	TotalPauseDuration     int64      `json:"total_pause_duration"`
	LastPauseStart         *time.Time `json:"last_pause_start,omitempty"`
	State                  State      `json:"state"`
	ElapsedTimeAtLastPause int64      `json:"elapsed_time_at_last_pause"`
}

// Timer is the state machine for an in-progress work session. All mutations
// must happen on a single goroutine; the TUI serialises its 1 Hz tick and
// every user-triggered transition onto the bubbletea update loop.
type Timer struct {
	db       store.DB
	shared   *sharedstate.Store
	schedule accounting.ScheduleProvider
	clock    timeutil.Clock
	display  config.Display

	state           State
	startTimestamp  time.Time
	totalPause      time.Duration
	lastPauseStart  time.Time
	elapsedAtPause  time.Duration
	openRecord      *record.DayRecord
	thresholdRaised bool

	// tickGen invalidates ticks scheduled before the most recent state
	// transition so that a dangling tick never fires into the wrong state.
	tickGen int

	ui tui
}

// New creates a timer in the notStarted state.
func New(
	db store.DB,
	shared *sharedstate.Store,
	schedule accounting.ScheduleProvider,
	clock timeutil.Clock,
	display config.Display,
) *Timer {
	t := &Timer{
		db:       db,
		shared:   shared,
		schedule: schedule,
		clock:    clock,
		display:  display,
		state:    StateNotStarted,
	}

	t.initUI()

	return t
}

func (t *Timer) State() State {
	return t.state
}

// Elapsed recomputes the session's elapsed time from absolute timestamps.
// Recomputing rather than incrementing a counter is what makes the timer
// self-correct after any suspension gap.
func (t *Timer) Elapsed() time.Duration {
	switch t.state {
	case StateRunning:
		return t.clock.Now().Sub(t.startTimestamp) - t.totalPause
	case StatePaused:
		return t.lastPauseStart.Sub(t.startTimestamp) - t.totalPause
	case StateFinished:
		return t.elapsedAtPause
	default:
		return 0
	}
}

// StandardDaySeconds is the end-of-day threshold, re-read from the schedule.
func (t *Timer) StandardDaySeconds() int64 {
	return t.schedule.Schedule().StandardDaySeconds()
}

// Start begins a session and opens the work record for the day. A day that
// already holds a work record is reopened and extended instead of replaced,
// so the recorded hours survive a second start. Starting from the finished
// state implicitly resets the timer first.
func (t *Timer) Start() error {
	switch t.state {
	case StateRunning:
		return nil
	case StatePaused:
		return t.Resume()
	}

	now := t.clock.Now()

	existing, err := t.db.GetRecord(now)
	if err != nil {
		return err
	}

	if existing != nil && !existing.Deleted &&
		existing.DayType != record.Work {
		return errNonWorkDay
	}

	t.state = StateRunning
	t.startTimestamp = now
	t.totalPause = 0
	t.lastPauseStart = time.Time{}
	t.elapsedAtPause = 0
	t.thresholdRaised = false

	if existing == nil || existing.Deleted {
		r := record.New(timeutil.RoundToStart(now), record.Work)
		start := now
		r.StartTime = &start
		t.openRecord = r
	} else {
		t.reopenRecord(existing, now)
	}

	t.persistRecord()
	t.persistSnapshot()

	return nil
}

// reopenRecord resumes a day that already has a work record. The elapsed
// time picks up where the recorded hours left off, and the off-clock gap
// since then counts as pause, so the next EndDay folds old and new work into
// one consistent record.
func (t *Timer) reopenRecord(r *record.DayRecord, now time.Time) {
	start := now

	if r.StartTime != nil {
		start = *r.StartTime
	} else {
		r.StartTime = &start
	}

	var worked time.Duration

	if r.EndTime != nil {
		worked = r.EndTime.Sub(start) -
			time.Duration(r.BreakDuration)*time.Second
		if worked < 0 {
			worked = 0
		}
	}

	t.startTimestamp = start

	t.totalPause = now.Sub(start) - worked
	if t.totalPause < 0 {
		t.totalPause = 0
	}

	r.EndTime = nil
	t.openRecord = r
}

// Pause suspends the running session.
func (t *Timer) Pause() error {
	if t.state != StateRunning {
		return errNotRunning
	}

	t.lastPauseStart = t.clock.Now()
	t.elapsedAtPause = t.lastPauseStart.Sub(t.startTimestamp) - t.totalPause
	t.state = StatePaused

	t.persistSnapshot()

	return nil
}

// Resume continues a paused session, folding the completed pause into the
// accumulated pause duration.
func (t *Timer) Resume() error {
	if t.state != StatePaused {
		return errNotPaused
	}

	t.totalPause += t.clock.Now().Sub(t.lastPauseStart)
	t.lastPauseStart = time.Time{}
	t.state = StateRunning

	t.persistSnapshot()

	return nil
}

// Toggle maps the single external toggle command onto the transition table:
// it pauses a running session, resumes a paused one, and starts a session
// otherwise.
func (t *Timer) Toggle() error {
	switch t.state {
	case StateRunning:
		return t.Pause()
	case StatePaused:
		return t.Resume()
	default:
		return t.Start()
	}
}

// EndDay closes the session and materialises the day's record. The overtime
// written here is clamped to zero: a live session cannot show negative time
// worked. The signed formula applies only to the general per-record
// derivation.
func (t *Timer) EndDay() error {
	if t.state != StateRunning && t.state != StatePaused {
		return errNoSession
	}

	now := t.clock.Now()

	if t.state == StatePaused {
		t.totalPause += now.Sub(t.lastPauseStart)
		t.lastPauseStart = time.Time{}
	}

	elapsed := now.Sub(t.startTimestamp) - t.totalPause
	elapsedSeconds := timeutil.Round(elapsed.Seconds())

	t.elapsedAtPause = elapsed
	t.state = StateFinished

	if t.openRecord == nil {
		// recovered from a snapshot whose record is missing; rebuild it so
		// the day is not lost
		r := record.New(timeutil.RoundToStart(t.startTimestamp), record.Work)
		start := t.startTimestamp
		r.StartTime = &start
		t.openRecord = r
	}

	end := now
	t.openRecord.EndTime = &end
	t.openRecord.BreakDuration = timeutil.Round(t.totalPause.Seconds())
	t.openRecord.TotalHours = elapsed.Seconds() / timeutil.SecondsInAnHour

	overtime := elapsedSeconds - t.StandardDaySeconds()
	if overtime < 0 {
		overtime = 0
	}

	t.openRecord.OvertimeSeconds = overtime
	t.openRecord.ModifiedAt = now

	t.persistRecord()
	t.clearSnapshot()

	t.openRecord = nil

	return nil
}

// ShouldEndDay raises the one-shot end-of-day signal once the elapsed time
// reaches the standard work day. It never forces a transition; the user has
// to confirm.
func (t *Timer) ShouldEndDay() bool {
	if t.state != StateRunning || t.thresholdRaised {
		return false
	}

	standard := t.StandardDaySeconds()
	if standard <= 0 {
		return false
	}

	if timeutil.Round(t.Elapsed().Seconds()) < standard {
		return false
	}

	t.thresholdRaised = true

	return true
}

// Snapshot returns the durable state of the session.
func (t *Timer) Snapshot() Snapshot {
	s := Snapshot{
		StartTimestamp:         t.startTimestamp,
		TotalPauseDuration:     timeutil.Round(t.totalPause.Seconds()),
		State:                  t.state,
		ElapsedTimeAtLastPause: timeutil.Round(t.elapsedAtPause.Seconds()),
	}

	if !t.lastPauseStart.IsZero() {
		pauseStart := t.lastPauseStart
		s.LastPauseStart = &pauseStart
	}

	return s
}

// persistSnapshot serialises the snapshot to the database and to the shared
// store visible to out-of-process readers. Failures are logged and swallowed:
// persistence must never block the user mid-session.
func (t *Timer) persistSnapshot() {
	b, err := json.Marshal(t.Snapshot())
	if err != nil {
		slog.Error("unable to encode timer snapshot", "error", err)
		return
	}

	if err := t.db.SaveSnapshot(b); err != nil {
		slog.Error("unable to save timer snapshot", "error", err)
	}

	if t.shared != nil {
		if err := t.shared.Set(SnapshotKey, b); err != nil {
			slog.Error("unable to publish timer snapshot", "error", err)
		}
	}
}

// clearSnapshot removes the durable and published snapshots once a session
// has ended, so readers and the next launch see no session in progress.
func (t *Timer) clearSnapshot() {
	if err := t.db.ClearSnapshot(); err != nil {
		slog.Error("unable to clear timer snapshot", "error", err)
	}

	if t.shared != nil {
		if err := t.shared.Delete(SnapshotKey); err != nil {
			slog.Error("unable to remove published timer snapshot", "error", err)
		}
	}
}

// persistRecord saves the open day record, logging and swallowing failures
// for the same reason as persistSnapshot.
func (t *Timer) persistRecord() {
	if t.openRecord == nil {
		return
	}

	if err := t.db.UpdateRecord(t.openRecord); err != nil {
		slog.Error(
			"unable to save day record",
			"date", t.openRecord.Date,
			"error", err,
		)
	}
}

// Recover restores a timer from the last persisted snapshot. A snapshot in
// the running state means the previous process died mid-session: the elapsed
// time recomputes correctly from the stored timestamps, and the caller is
// expected to restart the tick loop immediately.
func Recover(
	db store.DB,
	shared *sharedstate.Store,
	schedule accounting.ScheduleProvider,
	clock timeutil.Clock,
	display config.Display,
) (*Timer, error) {
	t := New(db, shared, schedule, clock, display)

	b, err := db.GetSnapshot()
	if err != nil {
		return nil, err
	}

	if len(b) == 0 {
		return t, nil
	}

	var s Snapshot

	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}

	if s.State != StateRunning && s.State != StatePaused {
		return t, nil
	}

	t.state = s.State
	t.startTimestamp = s.StartTimestamp
	t.totalPause = time.Duration(s.TotalPauseDuration) * time.Second
	t.elapsedAtPause = time.Duration(s.ElapsedTimeAtLastPause) * time.Second

	if s.LastPauseStart != nil {
		t.lastPauseStart = *s.LastPauseStart
	}

	r, err := db.GetRecord(s.StartTimestamp)
	if err != nil {
		return nil, err
	}

	if r != nil && r.DayType == record.Work && r.EndTime == nil {
		t.openRecord = r
	}

	return t, nil
}
