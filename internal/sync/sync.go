// Package sync replicates day records to and from a remote backend
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/timeutil"
	"github.com/jgehrke/worklog/store"
)

// Replicator is the transport to the replication backend. Implementations
// must not retry internally: connectivity failures surface to the caller,
// and the outbox keeps the pending changes for the next attempt.
type Replicator interface {
	Push(ctx context.Context, records []*record.DayRecord) error
	Pull(
		ctx context.Context,
		since time.Time,
	) ([]*record.DayRecord, error)
}

// Result summarises one replication round.
type Result struct {
	Pushed  int
	Pulled  int
	Applied int
}

// Service drains the local outbox and merges remote changes.
type Service struct {
	DB         store.DB
	Replicator Replicator
	Clock      timeutil.Clock
}

// Run performs one push-then-pull round. Tombstoned records replicate like
// any other upsert; the backend decides when to hard-delete.
func (s *Service) Run(ctx context.Context) (Result, error) {
	if s.Clock == nil {
		s.Clock = timeutil.SystemClock{}
	}

	var res Result

	pushed, err := s.push(ctx)
	if err != nil {
		return res, err
	}

	res.Pushed = pushed

	pulled, applied, err := s.pull(ctx)
	if err != nil {
		return res, err
	}

	res.Pulled = pulled
	res.Applied = applied

	return res, nil
}

func (s *Service) push(ctx context.Context) (int, error) {
	changes, err := s.DB.PendingChanges()
	if err != nil {
		return 0, err
	}

	if len(changes) == 0 {
		return 0, nil
	}

	var (
		records []*record.DayRecord
		keys    [][]byte
	)

	for _, change := range changes {
		date, err := time.Parse(time.RFC3339, string(change.RecordKey))
		if err != nil {
			slog.Error(
				"skipping malformed outbox key",
				"key", string(change.RecordKey),
				"error", err,
			)

			keys = append(keys, change.RecordKey)

			continue
		}

		r, err := s.DB.GetRecord(date)
		if err != nil {
			return 0, err
		}

		if r == nil {
			keys = append(keys, change.RecordKey)
			continue
		}

		records = append(records, r)
		keys = append(keys, change.RecordKey)
	}

	if len(records) > 0 {
		if err := s.Replicator.Push(ctx, records); err != nil {
			return 0, fmt.Errorf("pushing %d records: %w", len(records), err)
		}
	}

	if err := s.DB.ClearChanges(keys); err != nil {
		return 0, err
	}

	return len(records), nil
}

// pull merges remote records last-writer-wins on ModifiedAt. Remote records
// apply without touching the outbox, so a pull never echoes.
func (s *Service) pull(ctx context.Context) (pulled, applied int, err error) {
	since, err := s.DB.GetLastSync()
	if err != nil {
		return 0, 0, err
	}

	remote, err := s.Replicator.Pull(ctx, since)
	if err != nil {
		return 0, 0, fmt.Errorf("pulling changes: %w", err)
	}

	for _, r := range remote {
		local, err := s.DB.GetRecord(r.Date)
		if err != nil {
			return pulled, applied, err
		}

		if local != nil && !r.ModifiedAt.After(local.ModifiedAt) {
			continue
		}

		if err := s.DB.ApplyRemote(r); err != nil {
			return pulled, applied, err
		}

		applied++
	}

	pulled = len(remote)

	if err := s.DB.SaveLastSync(s.Clock.Now()); err != nil {
		return pulled, applied, err
	}

	return pulled, applied, nil
}
