// Package store connects to the data store and manages day records and the
// timer snapshot
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/internal/timeutil"
)

var pathToDB string

var errWorklogRunning = errors.New(
	"is worklog already running? Only one instance can be active at a time",
)

const (
	recordsBucket = "records"
	timerBucket   = "timer"
	queueBucket   = "syncqueue"
)

// snapshotKey is the single key under which the timer snapshot lives.
var snapshotKey = []byte("snapshot")

// lastSyncKey marks the high-water instant of the last successful pull.
var lastSyncKey = []byte("last_sync")

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

func (c *Client) UpdateRecord(r *record.DayRecord) error {
	key := timeutil.ToKey(r.Date)

	value, err := json.Marshal(r)
	if err != nil {
		return err
	}

	op := SyncOpUpsert
	if r.Deleted {
		op = SyncOpDelete
	}

	return c.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(recordsBucket)).Put(key, value); err != nil {
			return err
		}

		return enqueue(tx, key, op)
	})
}

func (c *Client) GetRecord(date time.Time) (*record.DayRecord, error) {
	var r *record.DayRecord

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(recordsBucket)).Get(timeutil.ToKey(date))
		if len(b) == 0 {
			return nil
		}

		r = &record.DayRecord{}

		return json.Unmarshal(b, r)
	})

	return r, err
}

func (c *Client) GetRecords(
	start, end time.Time,
	includeDeleted bool,
) ([]*record.DayRecord, error) {
	var records []*record.DayRecord

	err := c.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(recordsBucket)).Cursor()

		min := timeutil.ToKey(start)
		max := timeutil.ToKey(end)

		if start.IsZero() {
			min = nil
		}

		k, v := cursor.First()
		if min != nil {
			k, v = cursor.Seek(min)
		}

		for ; k != nil && bytes.Compare(k, max) <= 0; k, v = cursor.Next() {
			r := &record.DayRecord{}

			if err := json.Unmarshal(v, r); err != nil {
				return err
			}

			if r.Deleted && !includeDeleted {
				continue
			}

			records = append(records, r)
		}

		return nil
	})

	return records, err
}

func (c *Client) DeleteRecord(r *record.DayRecord) error {
	r.Deleted = true
	r.ModifiedAt = time.Now()

	return c.UpdateRecord(r)
}

// ApplyRemote writes a record received from the replication backend without
// queuing it for replication, which would otherwise echo every pulled change
// straight back.
func (c *Client) ApplyRemote(r *record.DayRecord) error {
	key := timeutil.ToKey(r.Date)

	value, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(recordsBucket)).Put(key, value)
	})
}

func (c *Client) SaveLastSync(t time.Time) error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(timerBucket)).
			Put(lastSyncKey, []byte(t.Format(time.RFC3339)))
	})
}

func (c *Client) GetLastSync() (time.Time, error) {
	var raw []byte

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(timerBucket)).Get(lastSyncKey)
		if b != nil {
			raw = bytes.Clone(b)
		}

		return nil
	})
	if err != nil || len(raw) == 0 {
		return time.Time{}, err
	}

	return time.Parse(time.RFC3339, string(raw))
}

func (c *Client) SaveSnapshot(snapshot []byte) error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(timerBucket)).Put(snapshotKey, snapshot)
	})
}

func (c *Client) GetSnapshot() ([]byte, error) {
	var snapshot []byte

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(timerBucket)).Get(snapshotKey)
		if b != nil {
			snapshot = bytes.Clone(b)
		}

		return nil
	})

	return snapshot, err
}

func (c *Client) ClearSnapshot() error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(timerBucket)).Delete(snapshotKey)
	})
}

func (c *Client) PendingChanges() ([]QueuedChange, error) {
	var changes []QueuedChange

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(queueBucket)).
			ForEach(func(k, v []byte) error {
				changes = append(changes, QueuedChange{
					RecordKey: bytes.Clone(k),
					Op:        SyncOp(v),
				})

				return nil
			})
	})

	return changes, err
}

func (c *Client) ClearChanges(keys [][]byte) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(queueBucket))

		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		return nil
	})
}

func (c *Client) Open() error {
	db, err := openDB(pathToDB)
	if err != nil {
		return err
	}

	*c = Client{
		db,
	}

	return nil
}

// enqueue records a dirty key in the outbox. A later change to the same
// record overwrites the queued operation, which is the behaviour
// last-writer-wins replication needs.
func enqueue(tx *bolt.Tx, key []byte, op SyncOp) error {
	return tx.Bucket([]byte(queueBucket)).Put(key, []byte(op))
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		// another process holding the file lock surfaces as a timeout
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errWorklogRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	pathToDB = dbPath

	db, err := openDB(pathToDB)
	if err != nil {
		return nil, err
	}
	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{recordsBucket, timerBucket, queueBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
	}, nil
}
