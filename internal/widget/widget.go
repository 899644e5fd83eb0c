// Package widget assembles the read-only session projection shown by
// out-of-process consumers such as the status command
package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/sharedstate"
	"github.com/jgehrke/worklog/timer"
)

var ErrNoSession = errors.New("no session is in progress")

// Projection is a point-in-time view of the running session, derived entirely
// from the published snapshot. It never feeds back into the timer: readers
// display it and nothing more.
type Projection struct {
	State            timer.State `json:"state"`
	StartedAt        time.Time   `json:"started_at"`
	ElapsedSeconds   int64       `json:"elapsed_seconds"`
	StandardSeconds  int64       `json:"standard_seconds"`
	RemainingSeconds int64       `json:"remaining_seconds"`
	AccentColor      string      `json:"accent_color"`
}

// Project derives the projection from a snapshot at the given instant.
// Elapsed time recomputes from the snapshot's absolute timestamps, so a
// reader is accurate no matter how stale its last refresh was.
func Project(
	s timer.Snapshot,
	sched config.Schedule,
	display config.Display,
	now time.Time,
) Projection {
	var elapsed int64

	switch s.State {
	case timer.StateRunning:
		elapsed = int64(now.Sub(s.StartTimestamp).Seconds()) -
			s.TotalPauseDuration
	case timer.StatePaused:
		if s.LastPauseStart != nil {
			elapsed = int64(s.LastPauseStart.Sub(s.StartTimestamp).Seconds()) -
				s.TotalPauseDuration
		}
	case timer.StateFinished:
		elapsed = s.ElapsedTimeAtLastPause
	}

	if elapsed < 0 {
		elapsed = 0
	}

	standard := sched.StandardDaySeconds()

	remaining := standard - elapsed
	if remaining < 0 {
		remaining = 0
	}

	return Projection{
		State:            s.State,
		StartedAt:        s.StartTimestamp,
		ElapsedSeconds:   elapsed,
		StandardSeconds:  standard,
		RemainingSeconds: remaining,
		AccentColor:      display.AccentColor,
	}
}

// Load reads the published snapshot from the shared store and projects it.
// ErrNoSession means no timer has published a snapshot, or the last session
// ended.
func Load(
	shared *sharedstate.Store,
	sched config.Schedule,
	display config.Display,
	now time.Time,
) (Projection, error) {
	b, err := shared.Get(timer.SnapshotKey)
	if err != nil {
		return Projection{}, err
	}

	if len(b) == 0 {
		return Projection{}, ErrNoSession
	}

	var s timer.Snapshot

	if err := json.Unmarshal(b, &s); err != nil {
		return Projection{}, fmt.Errorf("decoding timer snapshot: %w", err)
	}

	if s.State != timer.StateRunning && s.State != timer.StatePaused {
		return Projection{}, ErrNoSession
	}

	return Project(s, sched, display, now), nil
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf(
		"%02d:%02d:%02d",
		seconds/3600,
		(seconds%3600)/60,
		seconds%60,
	)
}
