package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("opening test journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j, path
}

func TestRecordAndRecent(t *testing.T) {
	j, _ := testJournal(t)
	now := time.Now().UTC()

	entries := []Entry{
		{Entity: "alerts", ItemID: "a1", Status: "read", Outcome: OutcomeAccepted, RequestedAt: now.Add(-2 * time.Hour)},
		{Entity: "todos", ItemID: "t1", Status: "done", Outcome: OutcomeRejected, Error: "500", RequestedAt: now.Add(-1 * time.Hour)},
		{Entity: "alerts", ItemID: "a2", Status: "dismissed", Outcome: OutcomeAccepted, RequestedAt: now},
	}
	for _, e := range entries {
		got, err := j.Record(e)
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if got.ID == "" {
			t.Error("expected generated id")
		}
	}

	all, err := j.Recent(QueryOpts{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].ItemID != "a2" {
		t.Errorf("expected newest first, got %s", all[0].ItemID)
	}

	alerts, err := j.Recent(QueryOpts{Entity: "alerts"})
	if err != nil {
		t.Fatalf("Recent alerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("expected 2 alert entries, got %d", len(alerts))
	}

	rejected, err := j.Recent(QueryOpts{Outcome: OutcomeRejected})
	if err != nil {
		t.Fatalf("Recent rejected: %v", err)
	}
	if len(rejected) != 1 || rejected[0].Error != "500" {
		t.Errorf("unexpected rejected entries %+v", rejected)
	}

	limited, err := j.Recent(QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("Recent limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit 1, got %d", len(limited))
	}
}

func TestRecentSince(t *testing.T) {
	j, _ := testJournal(t)
	now := time.Now().UTC()
	j.Record(Entry{Entity: "alerts", ItemID: "old", Status: "read", Outcome: OutcomeAccepted, RequestedAt: now.Add(-48 * time.Hour)})
	j.Record(Entry{Entity: "alerts", ItemID: "new", Status: "read", Outcome: OutcomeAccepted, RequestedAt: now.Add(-1 * time.Hour)})

	got, err := j.Recent(QueryOpts{Since: now.Add(-3 * time.Hour)})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "new" {
		t.Errorf("expected only the recent entry, got %+v", got)
	}
}

func TestTrackRecordsOutcome(t *testing.T) {
	j, _ := testJournal(t)
	rejected := errors.New("PATCH /api/todos/t9: 404 Not Found")

	ok := j.Track("todos", func(ctx context.Context, id, status string) error { return nil }, nil)
	bad := j.Track("todos", func(ctx context.Context, id, status string) error { return rejected }, nil)

	if err := ok(context.Background(), "t1", "in_progress"); err != nil {
		t.Fatalf("tracked call: %v", err)
	}
	if err := bad(context.Background(), "t9", "done"); !errors.Is(err, rejected) {
		t.Fatalf("expected wrapped call error passed through, got %v", err)
	}

	entries, err := j.Recent(QueryOpts{Entity: "todos"})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	byItem := map[string]Entry{}
	for _, e := range entries {
		byItem[e.ItemID] = e
	}
	if byItem["t1"].Outcome != OutcomeAccepted || byItem["t1"].Status != "in_progress" {
		t.Errorf("unexpected entry for t1: %+v", byItem["t1"])
	}
	if byItem["t9"].Outcome != OutcomeRejected || byItem["t9"].Error != rejected.Error() {
		t.Errorf("unexpected entry for t9: %+v", byItem["t9"])
	}
}

func TestTrackReportsRecordFailure(t *testing.T) {
	j, _ := testJournal(t)
	j.Close()

	var recordErr error
	call := j.Track("alerts", func(ctx context.Context, id, status string) error { return nil }, func(err error) { recordErr = err })
	if err := call(context.Background(), "a1", "read"); err != nil {
		t.Fatalf("journal failure must not fail the call: %v", err)
	}
	if recordErr == nil {
		t.Error("expected record failure reported")
	}
}

func TestPrune(t *testing.T) {
	j, path := testJournal(t)
	now := time.Now().UTC()
	j.Record(Entry{Entity: "alerts", ItemID: "old", Status: "read", Outcome: OutcomeAccepted, RequestedAt: now.Add(-40 * 24 * time.Hour)})
	j.Record(Entry{Entity: "alerts", ItemID: "fresh", Status: "read", Outcome: OutcomeAccepted, RequestedAt: now.Add(-time.Hour)})

	deleted, err := j.Prune(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned entry, got %d", deleted)
	}

	count, size, err := j.Stats(path)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 remaining entry, got %d", count)
	}
	if size <= 0 {
		t.Errorf("expected positive file size, got %d", size)
	}

	deleted, err = j.Prune(30 * 24 * time.Hour)
	if err != nil || deleted != 0 {
		t.Errorf("second prune = %d, %v; want 0, nil", deleted, err)
	}
}
