package storage

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-invoker/internal/domain"
	"github.com/samvad-hq/samvad-invoker/pkg/jsonvalue"
	bolt "go.etcd.io/bbolt"
)

func exchange(id string, at time.Time) domain.Exchange {
	return domain.Exchange{
		RequestID:  id,
		Method:     "GET",
		Endpoint:   "https://httpbin.org/anything",
		StatusCode: 200,
		Value:      jsonvalue.MustFromAny(map[string]any{"json": map[string]any{"query": "Hello world"}}),
		ReceivedAt: at,
	}
}

func TestBoltStoreRecordsNewestFirst(t *testing.T) {
	storeRaw, err := openBolt(t.TempDir()+"/journal/exchanges.db", Options{
		EntryTTL:        time.Hour,
		CleanupInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	base := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		if err := store.Record(exchange(id, base.Add(time.Duration(i)*time.Millisecond))); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	got, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(got))
	}
	if got[0].RequestID != "c" || got[1].RequestID != "b" {
		t.Fatalf("unexpected order: %s, %s", got[0].RequestID, got[1].RequestID)
	}

	want := exchange("c", base)
	if !jsonvalue.Equal(got[0].Value, want.Value) {
		t.Fatalf("value not preserved: %s", got[0].Value)
	}
	if got[0].Endpoint != want.Endpoint || got[0].StatusCode != 200 {
		t.Fatalf("unexpected record: %+v", got[0])
	}
}

func TestBoltStoreExpiresEntries(t *testing.T) {
	storeRaw, err := openBolt(t.TempDir()+"/exchanges.db", Options{
		EntryTTL:        1 * time.Second,
		CleanupInterval: 1 * time.Second,
	})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if err := store.Record(exchange("old", time.Time{})); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := store.Recent(10)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one entry, got %d err=%v", len(got), err)
	}
	if got[0].ReceivedAt.IsZero() {
		t.Fatalf("zero ReceivedAt should be stamped on record")
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(2100 * time.Millisecond)

	got, err = store.Recent(10)
	if err != nil {
		t.Fatalf("Recent after expiry: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected expired entry to be hidden, got %d", len(got))
	}

	if err := store.maybeCleanupExpired(time.Now()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	var remaining int
	_ = store.db.View(func(tx *bolt.Tx) error {
		remaining = tx.Bucket([]byte(exchangeBucket)).Stats().KeyN
		return nil
	})
	if remaining != 0 {
		t.Fatalf("expected cleanup to delete expired entries, %d left", remaining)
	}
}

func countExchanges(t *testing.T, path string) int {
	t.Helper()
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("open bbolt: %v", err)
	}
	defer db.Close()

	var n int
	_ = db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(exchangeBucket)).Stats().KeyN
		return nil
	})
	return n
}

func TestBoltStoreSweepsExpiredEntriesAcrossRuns(t *testing.T) {
	path := t.TempDir() + "/exchanges.db"
	opts := Options{EntryTTL: time.Hour, CleanupInterval: 12 * time.Hour}

	// Seed two entries whose expiry already passed, as a previous run would leave them.
	seed, err := openBolt(path, opts)
	if err != nil {
		t.Fatalf("openBolt seed: %v", err)
	}
	stale := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(stale, uint64(time.Now().Add(-time.Minute).Unix()))
	stale = append(stale, []byte(`{"request_id":"stale"}`)...)
	err = seed.(*boltStore).db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(exchangeBucket))
		for _, id := range []string{"stale-1", "stale-2"} {
			if err := bucket.Put(exchangeKey(exchange(id, time.Now().Add(-2*time.Hour))), stale); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed stale entries: %v", err)
	}
	if err := seed.Close(); err != nil {
		t.Fatalf("close seed: %v", err)
	}
	if got := countExchanges(t, path); got != 2 {
		t.Fatalf("expected 2 seeded entries, got %d", got)
	}

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		store, err := NewStore("bbolt", path, opts)
		if err != nil {
			t.Fatalf("run %d: NewStore: %v", i, err)
		}
		if err := store.Record(exchange(id, time.Now().UTC())); err != nil {
			t.Fatalf("run %d: Record: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("run %d: Close: %v", i, err)
		}
	}

	if got := countExchanges(t, path); got != 3 {
		t.Fatalf("expected only the 3 live entries on disk, got %d", got)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(exchange("x", time.Now())); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	got, err := store.Recent(5)
	if err != nil || got != nil {
		t.Fatalf("noop store Recent: %v %v", got, err)
	}
}

func TestNewStoreRejectsUnknownBackends(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected unsupported storage error")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected missing path error")
	}
}
