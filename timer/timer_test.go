package timer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/sharedstate"
	"github.com/jgehrke/worklog/store"
)

type fakeSchedule struct {
	schedule config.Schedule
}

func (f fakeSchedule) Schedule() config.Schedule {
	return f.schedule
}

// fakeClock is a settable clock so that elapsed-time arithmetic can be
// exercised without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

var t0 = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func eightHourDays() fakeSchedule {
	return fakeSchedule{
		schedule: config.Schedule{
			WeeklyHours: 40,
			Workdays: [7]bool{
				true, true, true, true, true, false, false,
			},
		},
	}
}

func testDB(t *testing.T) *store.Client {
	t.Helper()

	c, err := store.NewClient(filepath.Join(t.TempDir(), "worklog.db"))
	if err != nil {
		t.Fatalf("unable to open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

func testShared(t *testing.T) *sharedstate.Store {
	t.Helper()

	s, err := sharedstate.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func newTestTimer(
	t *testing.T,
	clock *fakeClock,
) (*Timer, *store.Client) {
	t.Helper()

	db := testDB(t)

	return New(
		db,
		testShared(t),
		eightHourDays(),
		clock,
		config.Display{},
	), db
}

func TestStartCreatesOpenWorkRecord(t *testing.T) {
	clock := &fakeClock{now: t0}
	tm, db := newTestTimer(t, clock)

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if tm.State() != StateRunning {
		t.Fatalf("State = %q, want %q", tm.State(), StateRunning)
	}

	r, err := db.GetRecord(t0)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}

	if r == nil {
		t.Fatal("expected an open work record for today")
	}

	if r.DayType != record.Work {
		t.Errorf("DayType = %q, want %q", r.DayType, record.Work)
	}

	if r.StartTime == nil || !r.StartTime.Equal(t0) {
		t.Errorf("StartTime = %v, want %v", r.StartTime, t0)
	}

	if r.EndTime != nil {
		t.Error("expected the open record to have no end time")
	}
}

func TestElapsedSurvivesProcessRestart(t *testing.T) {
	clock := &fakeClock{now: t0}
	tm, db := newTestTimer(t, clock)

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// simulate the process dying and relaunching five minutes later: only
	// the snapshot survives
	clock.advance(300 * time.Second)

	recovered, err := Recover(
		db,
		nil,
		eightHourDays(),
		clock,
		config.Display{},
	)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}

	if recovered.State() != StateRunning {
		t.Fatalf("State = %q, want %q", recovered.State(), StateRunning)
	}

	if got, want := recovered.Elapsed(), 300*time.Second; got != want {
		t.Errorf("Elapsed = %v, want %v", got, want)
	}
}

func TestRecoverWithoutSnapshot(t *testing.T) {
	clock := &fakeClock{now: t0}
	db := testDB(t)

	tm, err := Recover(db, nil, eightHourDays(), clock, config.Display{})
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}

	if tm.State() != StateNotStarted {
		t.Errorf("State = %q, want %q", tm.State(), StateNotStarted)
	}
}

func TestPauseResumeAccounting(t *testing.T) {
	clock := &fakeClock{now: t0}
	tm, db := newTestTimer(t, clock)

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.advance(100 * time.Second)

	if err := tm.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	clock.advance(60 * time.Second)

	if err := tm.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	clock.advance(240 * time.Second)

	if got, want := tm.Elapsed(), 340*time.Second; got != want {
		t.Fatalf("Elapsed = %v, want %v", got, want)
	}

	if err := tm.EndDay(); err != nil {
		t.Fatalf("EndDay: %v", err)
	}

	r, err := db.GetRecord(t0)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}

	if r == nil || r.EndTime == nil {
		t.Fatal("expected a closed day record")
	}

	wantEnd := t0.Add(400 * time.Second)
	if !r.EndTime.Equal(wantEnd) {
		t.Errorf("EndTime = %v, want %v", r.EndTime, wantEnd)
	}

	if got, want := r.BreakDuration, int64(60); got != want {
		t.Errorf("BreakDuration = %d, want %d", got, want)
	}

	if got, want := r.TotalHours, 340.0/3600; got != want {
		t.Errorf("TotalHours = %v, want %v", got, want)
	}

	// 340s is far below the 8h standard, and the timer path clamps
	if got, want := r.OvertimeSeconds, int64(0); got != want {
		t.Errorf("OvertimeSeconds = %d, want %d", got, want)
	}
}

func TestElapsedWhilePausedIsFrozen(t *testing.T) {
	clock := &fakeClock{now: t0}
	tm, _ := newTestTimer(t, clock)

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.advance(100 * time.Second)

	if err := tm.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	clock.advance(1 * time.Hour)

	if got, want := tm.Elapsed(), 100*time.Second; got != want {
		t.Errorf("Elapsed = %v, want %v", got, want)
	}
}

func TestEndDayOvertimeAboveStandard(t *testing.T) {
	clock := &fakeClock{now: t0}
	tm, db := newTestTimer(t, clock)

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// 8h standard plus one extra hour
	clock.advance(9 * time.Hour)

	if err := tm.EndDay(); err != nil {
		t.Fatalf("EndDay: %v", err)
	}

	r, err := db.GetRecord(t0)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}

	if got, want := r.OvertimeSeconds, int64(3600); got != want {
		t.Errorf("OvertimeSeconds = %d, want %d", got, want)
	}
}

func TestShouldEndDayIsOneShot(t *testing.T) {
	clock := &fakeClock{now: t0}
	tm, _ := newTestTimer(t, clock)

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if tm.ShouldEndDay() {
		t.Fatal("signal raised before the threshold")
	}

	clock.advance(8 * time.Hour)

	if !tm.ShouldEndDay() {
		t.Fatal("expected the end-of-day signal at the threshold")
	}

	clock.advance(1 * time.Hour)

	if tm.ShouldEndDay() {
		t.Error("expected the signal to fire only once")
	}
}

func TestToggleTransitions(t *testing.T) {
	clock := &fakeClock{now: t0}
	tm, _ := newTestTimer(t, clock)

	if err := tm.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	if tm.State() != StateRunning {
		t.Fatalf("State = %q, want %q", tm.State(), StateRunning)
	}

	if err := tm.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	if tm.State() != StatePaused {
		t.Fatalf("State = %q, want %q", tm.State(), StatePaused)
	}

	if err := tm.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	if tm.State() != StateRunning {
		t.Fatalf("State = %q, want %q", tm.State(), StateRunning)
	}
}

func TestPausedTimerStillDrainsExternalCommands(t *testing.T) {
	clock := &fakeClock{now: t0}
	db := testDB(t)
	shared := testShared(t)

	tm := New(db, shared, eightHourDays(), clock, config.Display{})

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := tm.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	// a paused session must keep a tick scheduled, otherwise the command
	// queue is never drained and the session can never be resumed from
	// outside
	if cmd := tm.retick(); cmd == nil {
		t.Fatal("expected a tick to stay scheduled while paused")
	}

	if err := shared.PushCommand(sharedstate.CommandToggle); err != nil {
		t.Fatalf("PushCommand: %v", err)
	}

	if _, _ = tm.handleTick(tickMsg{gen: tm.tickGen}); tm.State() != StateRunning {
		t.Errorf("State = %q, want %q", tm.State(), StateRunning)
	}

	if err := tm.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	if err := shared.PushCommand(sharedstate.CommandEndDay); err != nil {
		t.Fatalf("PushCommand: %v", err)
	}

	if _, _ = tm.handleTick(tickMsg{gen: tm.tickGen}); tm.State() != StateFinished {
		t.Errorf("State = %q, want %q", tm.State(), StateFinished)
	}
}

func TestStartPreservesCompletedDayRecord(t *testing.T) {
	clock := &fakeClock{now: t0}
	tm, db := newTestTimer(t, clock)

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.advance(8 * time.Hour)

	if err := tm.EndDay(); err != nil {
		t.Fatalf("EndDay: %v", err)
	}

	// an hour off the clock, then the timer is started again the same day
	clock.advance(1 * time.Hour)

	tm2, err := Recover(db, nil, eightHourDays(), clock, config.Display{})
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}

	if err := tm2.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	r, err := db.GetRecord(t0)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}

	if got, want := r.TotalHours, 8.0; got != want {
		t.Fatalf("TotalHours = %v, want the recorded hours preserved (%v)",
			got, want)
	}

	if r.EndTime != nil {
		t.Error("expected the reopened record to have no end time")
	}

	if got, want := tm2.Elapsed(), 8*time.Hour; got != want {
		t.Errorf("Elapsed = %v, want %v", got, want)
	}

	clock.advance(30 * time.Minute)

	if err := tm2.EndDay(); err != nil {
		t.Fatalf("EndDay: %v", err)
	}

	r, err = db.GetRecord(t0)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}

	if got, want := r.TotalHours, 8.5; got != want {
		t.Errorf("TotalHours = %v, want %v", got, want)
	}

	wantEnd := t0.Add(9*time.Hour + 30*time.Minute)
	if r.EndTime == nil || !r.EndTime.Equal(wantEnd) {
		t.Errorf("EndTime = %v, want %v", r.EndTime, wantEnd)
	}

	// the off-clock hour counts as break
	if got, want := r.BreakDuration, int64(3600); got != want {
		t.Errorf("BreakDuration = %d, want %d", got, want)
	}

	if got, want := r.OvertimeSeconds, int64(1800); got != want {
		t.Errorf("OvertimeSeconds = %d, want %d", got, want)
	}
}

func TestStartRefusesNonWorkDay(t *testing.T) {
	clock := &fakeClock{now: t0}
	db := testDB(t)

	vacation := record.New(t0, record.Vacation)
	if err := db.UpdateRecord(vacation); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	tm := New(db, testShared(t), eightHourDays(), clock, config.Display{})

	if err := tm.Start(); err == nil {
		t.Fatal("expected Start to refuse a day logged as vacation")
	}

	if tm.State() != StateNotStarted {
		t.Errorf("State = %q, want %q", tm.State(), StateNotStarted)
	}

	r, err := db.GetRecord(t0)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}

	if r.DayType != record.Vacation {
		t.Errorf("DayType = %q, want the entry left untouched", r.DayType)
	}
}

func TestEndDayClearsSnapshot(t *testing.T) {
	clock := &fakeClock{now: t0}
	tm, db := newTestTimer(t, clock)

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.advance(1 * time.Hour)

	if err := tm.EndDay(); err != nil {
		t.Fatalf("EndDay: %v", err)
	}

	b, err := db.GetSnapshot()
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}

	if len(b) != 0 {
		t.Errorf("expected no snapshot after the day ended, got %q", b)
	}

	recovered, err := Recover(db, nil, eightHourDays(), clock, config.Display{})
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}

	if recovered.State() != StateNotStarted {
		t.Errorf("State = %q, want %q", recovered.State(), StateNotStarted)
	}
}

func TestExternalCommandsReachTheOwner(t *testing.T) {
	clock := &fakeClock{now: t0}
	db := testDB(t)
	shared := testShared(t)

	tm := New(db, shared, eightHourDays(), clock, config.Display{})

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// an out-of-process consumer pushes toggle; the owner drains it on the
	// next tick
	if err := shared.PushCommand(sharedstate.CommandToggle); err != nil {
		t.Fatalf("PushCommand: %v", err)
	}

	tm.applyCommands()

	if tm.State() != StatePaused {
		t.Errorf("State = %q, want %q", tm.State(), StatePaused)
	}

	if err := shared.PushCommand(sharedstate.CommandEndDay); err != nil {
		t.Fatalf("PushCommand: %v", err)
	}

	tm.applyCommands()

	if tm.State() != StateFinished {
		t.Errorf("State = %q, want %q", tm.State(), StateFinished)
	}
}
