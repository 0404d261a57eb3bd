package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fenilsonani/desk-triage/internal/executor"
	"github.com/fenilsonani/desk-triage/internal/strategy"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleLedger() *executor.Ledger {
	return &executor.Ledger{
		Successes: []executor.OperationRecord{
			{Path: "/d/a.tmp", Action: strategy.ActionDelete, FreedMB: 1.5},
			{Path: "/d/b.jpg", Action: strategy.ActionMove, NewPath: "/d/整理_图片/b.jpg"},
		},
		Failures: []executor.FailureRecord{
			{Path: "/d/gone.tmp", Action: strategy.ActionDelete, Error: "File not found"},
		},
		Skipped:      []string{"/d/c.pdf"},
		DeletedCount: 1,
		MovedCount:   1,
		KeptCount:    1,
		FreedSpaceMB: 1.5,
	}
}

func TestRecordAndListRuns(t *testing.T) {
	store := openStore(t)

	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	runID, err := store.RecordRun(started, "remote", 4, false, sampleLedger())
	if err != nil {
		t.Fatalf("RecordRun error: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected non-zero run id")
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	r := runs[0]
	if r.Provider != "remote" || r.ScannedCount != 4 {
		t.Errorf("run = %+v", r)
	}
	if r.DeletedCount != 1 || r.MovedCount != 1 || r.KeptCount != 1 || r.FailedCount != 1 {
		t.Errorf("run counts = %+v", r)
	}
	if r.FreedSpaceMB != 1.5 {
		t.Errorf("freed_mb = %v, want 1.5", r.FreedSpaceMB)
	}
}

func TestRunEntriesOrder(t *testing.T) {
	store := openStore(t)

	runID, err := store.RecordRun(time.Now(), "rules", 4, false, sampleLedger())
	if err != nil {
		t.Fatalf("RecordRun error: %v", err)
	}

	entries, err := store.RunEntries(runID)
	if err != nil {
		t.Fatalf("RunEntries error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	if entries[0].Path != "/d/a.tmp" || entries[0].Action != "delete" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].NewPath != "/d/整理_图片/b.jpg" {
		t.Errorf("move entry missing new path: %+v", entries[1])
	}
	if entries[2].Error != "File not found" {
		t.Errorf("failure entry = %+v", entries[2])
	}
	if entries[3].Action != "keep" {
		t.Errorf("skipped entry = %+v", entries[3])
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openStore(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := store.RecordRun(base.AddDate(0, 0, i), "rules", i, true, &executor.Ledger{}); err != nil {
			t.Fatalf("RecordRun %d error: %v", i, err)
		}
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not newest first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
	if !runs[0].DryRun {
		t.Error("dry_run flag not persisted")
	}
}
