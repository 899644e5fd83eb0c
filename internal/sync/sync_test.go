package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/record"
	"github.com/jgehrke/worklog/store"
)

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	return f.now
}

type fakeReplicator struct {
	pushed []*record.DayRecord
	remote []*record.DayRecord

	pushErr error
	pullErr error

	lastSince time.Time
}

func (f *fakeReplicator) Push(
	_ context.Context,
	records []*record.DayRecord,
) error {
	if f.pushErr != nil {
		return f.pushErr
	}

	f.pushed = append(f.pushed, records...)

	return nil
}

func (f *fakeReplicator) Pull(
	_ context.Context,
	since time.Time,
) ([]*record.DayRecord, error) {
	f.lastSince = since

	return f.remote, f.pullErr
}

var t0 = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

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

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func TestRunPushesOutboxAndClearsIt(t *testing.T) {
	db := testDB(t)
	rep := &fakeReplicator{}

	for d := 3; d <= 5; d++ {
		if err := db.UpdateRecord(record.New(day(d), record.Work)); err != nil {
			t.Fatalf("UpdateRecord: %v", err)
		}
	}

	s := &Service{DB: db, Replicator: rep, Clock: fakeClock{now: t0}}

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got, want := res.Pushed, 3; got != want {
		t.Errorf("Pushed = %d, want %d", got, want)
	}

	changes, err := db.PendingChanges()
	if err != nil {
		t.Fatalf("PendingChanges: %v", err)
	}

	if len(changes) != 0 {
		t.Errorf("expected an empty outbox, got %d entries", len(changes))
	}
}

func TestPushFailureKeepsOutbox(t *testing.T) {
	db := testDB(t)
	rep := &fakeReplicator{pushErr: context.DeadlineExceeded}

	if err := db.UpdateRecord(record.New(day(3), record.Work)); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	s := &Service{DB: db, Replicator: rep, Clock: fakeClock{now: t0}}

	if _, err := s.Run(context.Background()); err == nil {
		t.Fatal("expected the transport failure to surface")
	}

	changes, err := db.PendingChanges()
	if err != nil {
		t.Fatalf("PendingChanges: %v", err)
	}

	if len(changes) != 1 {
		t.Errorf("expected the outbox to survive the failure, got %d entries",
			len(changes))
	}
}

func TestPullAppliesNewerRemoteRecords(t *testing.T) {
	db := testDB(t)

	local := record.New(day(3), record.Work)
	local.Note = "local"
	local.ModifiedAt = t0

	if err := db.UpdateRecord(local); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	newer := record.New(day(3), record.Work)
	newer.Note = "remote newer"
	newer.ModifiedAt = t0.Add(time.Hour)

	staleDate := day(4)

	stale := record.New(staleDate, record.Vacation)
	stale.ModifiedAt = t0.Add(-time.Hour)

	existing := record.New(staleDate, record.Work)
	existing.Note = "kept"
	existing.ModifiedAt = t0

	if err := db.UpdateRecord(existing); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	rep := &fakeReplicator{remote: []*record.DayRecord{newer, stale}}
	s := &Service{DB: db, Replicator: rep, Clock: fakeClock{now: t0}}

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got, want := res.Applied, 1; got != want {
		t.Errorf("Applied = %d, want %d", got, want)
	}

	got, err := db.GetRecord(day(3))
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}

	if diff := cmp.Diff(newer, got); diff != "" {
		t.Errorf("record mismatch after merge (-want +got):\n%s", diff)
	}

	kept, err := db.GetRecord(staleDate)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}

	if kept.Note != "kept" {
		t.Errorf("stale remote record overwrote a newer local one: %q",
			kept.Note)
	}
}

func TestPullDoesNotEchoAppliedRecords(t *testing.T) {
	db := testDB(t)

	remote := record.New(day(3), record.Work)
	remote.ModifiedAt = t0

	rep := &fakeReplicator{remote: []*record.DayRecord{remote}}
	s := &Service{DB: db, Replicator: rep, Clock: fakeClock{now: t0}}

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	changes, err := db.PendingChanges()
	if err != nil {
		t.Fatalf("PendingChanges: %v", err)
	}

	if len(changes) != 0 {
		t.Errorf("applied remote records must not enter the outbox, got %d",
			len(changes))
	}
}

func TestRunAdvancesLastSync(t *testing.T) {
	db := testDB(t)
	rep := &fakeReplicator{}
	s := &Service{DB: db, Replicator: rep, Clock: fakeClock{now: t0}}

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !rep.lastSince.IsZero() {
		t.Errorf("first pull should request everything, got since=%v",
			rep.lastSince)
	}

	later := fakeClock{now: t0.Add(time.Hour)}
	s.Clock = later

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got, want := rep.lastSince, t0; !got.Equal(want) {
		t.Errorf("since = %v, want %v", got, want)
	}
}

func TestHTTPReplicatorRoundTrip(t *testing.T) {
	var (
		gotPush []*record.DayRecord
		since   string
	)

	remote := record.New(day(10), record.Holiday)

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				if err := json.NewDecoder(r.Body).Decode(&gotPush); err != nil {
					t.Errorf("decoding push body: %v", err)
				}

				w.WriteHeader(http.StatusNoContent)
			case http.MethodGet:
				since = r.URL.Query().Get("since")

				_ = json.NewEncoder(w).Encode(
					[]*record.DayRecord{remote},
				)
			}
		},
	))
	t.Cleanup(srv.Close)

	rep, err := NewHTTPReplicator(
		context.Background(),
		config.SyncConfig{Endpoint: srv.URL},
	)
	if err != nil {
		t.Fatalf("NewHTTPReplicator: %v", err)
	}

	local := record.New(day(3), record.Work)

	if err := rep.Push(context.Background(),
		[]*record.DayRecord{local}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if len(gotPush) != 1 || gotPush[0].ID != local.ID {
		t.Errorf("push did not deliver the record")
	}

	pulled, err := rep.Pull(context.Background(), t0)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}

	if since != t0.Format(time.RFC3339) {
		t.Errorf("since = %q, want %q", since, t0.Format(time.RFC3339))
	}

	if len(pulled) != 1 || pulled[0].ID != remote.ID {
		t.Errorf("pull did not deliver the record")
	}
}

func TestNewHTTPReplicatorRequiresEndpoint(t *testing.T) {
	if _, err := NewHTTPReplicator(
		context.Background(),
		config.SyncConfig{},
	); err == nil {
		t.Fatal("expected an error without an endpoint")
	}
}
