package store

import (
	"time"

	"github.com/jgehrke/worklog/internal/record"
)

// SyncOp is the replication operation queued for a dirty record.
type SyncOp string

const (
	SyncOpUpsert SyncOp = "upsert"
	SyncOpDelete SyncOp = "delete"
)

// QueuedChange is one pending outbox entry for the sync collaborator.
type QueuedChange struct {
	RecordKey []byte
	Op        SyncOp
}

// DB is the database storage interface.
type DB interface {
	// UpdateRecord saves a day record. The record is created if it doesn't
	// exist already, or overwritten if it does. The change is queued for
	// replication.
	UpdateRecord(r *record.DayRecord) error
	// GetRecord returns the record for the calendar day containing date,
	// or nil if none exists.
	GetRecord(date time.Time) (*record.DayRecord, error)
	// GetRecords returns records in the inclusive date range, excluding
	// tombstoned records unless includeDeleted is set.
	GetRecords(
		start, end time.Time,
		includeDeleted bool,
	) ([]*record.DayRecord, error)
	// DeleteRecord tombstones a record. Hard deletion is the sync
	// collaborator's business.
	DeleteRecord(r *record.DayRecord) error
	// ApplyRemote writes a replicated record without queuing it back for
	// replication
	ApplyRemote(r *record.DayRecord) error
	// SaveLastSync stores the instant of the last successful pull
	SaveLastSync(t time.Time) error
	// GetLastSync returns the instant of the last successful pull, or the
	// zero time when no pull has happened yet
	GetLastSync() (time.Time, error)
	// SaveSnapshot stores the durable timer state
	SaveSnapshot(snapshot []byte) error
	// GetSnapshot returns the last saved timer state (if any)
	GetSnapshot() ([]byte, error)
	// ClearSnapshot removes the saved timer state
	ClearSnapshot() error
	// PendingChanges returns the queued outbox entries in insertion order
	PendingChanges() ([]QueuedChange, error)
	// ClearChanges removes outbox entries that have been replicated
	ClearChanges(keys [][]byte) error
	// Close ends the database connection
	Close() error
	// Open begins a database connection
	Open() error
}
