package stores

import (
	"context"
	"testing"
	"time"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	return store
}

func testRun(id string) *Run {
	now := time.Now().UTC().Truncate(time.Second)
	return &Run{
		ID:           id,
		Command:      RunCommandAudit,
		DocumentPath: "structure.json",
		BasePath:     ".",
		Status:       RunStatusRunning,
		StartedAt:    now,
		CreatedAt:    now,
	}
}

func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	tables := []string{"runs", "drift_items", "operations"}
	for _, table := range tables {
		query := "SELECT COUNT(*) FROM " + table
		var count int
		if err := store.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}
}

func TestRunCRUD(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	run := testRun("run-1")

	if err := store.CreateRun(ctx, run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Command != RunCommandAudit {
		t.Errorf("expected command audit, got %s", got.Command)
	}
	if got.Status != RunStatusRunning {
		t.Errorf("expected status running, got %s", got.Status)
	}

	if err := store.CompleteRun(ctx, "run-1", RunStatusCompleted, nil, "drift=0"); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	got, err = store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to get completed run: %v", err)
	}
	if got.Status != RunStatusCompleted {
		t.Errorf("expected status completed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Errorf("completed run should carry a completion time")
	}
	if got.Summary != "drift=0" {
		t.Errorf("expected summary drift=0, got %q", got.Summary)
	}
}

func TestRunNotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if _, err := store.GetRun(ctx, "missing"); err == nil {
		t.Errorf("expected error for missing run")
	}
	if err := store.CompleteRun(ctx, "missing", RunStatusFailed, nil, ""); err == nil {
		t.Errorf("expected error completing a missing run")
	}
}

func TestListRuns(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := testRun(id)
		run.StartedAt = run.StartedAt.Add(time.Duration(i) * time.Minute)
		if err := store.CreateRun(ctx, run); err != nil {
			t.Fatalf("failed to create run %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-c" {
		t.Errorf("expected newest run first, got %s", runs[0].ID)
	}
}

func TestDriftItems(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateRun(ctx, testRun("run-1")); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	items := []DriftItem{
		{RunID: "run-1", Kind: DriftMissingDirectory, Directory: "src"},
		{RunID: "run-1", Kind: DriftExtraFile, Directory: "docs", Name: "stray.txt"},
	}
	if err := store.RecordDriftItems(ctx, items); err != nil {
		t.Fatalf("failed to record drift items: %v", err)
	}

	got, err := store.ListDriftItems(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to list drift items: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 drift items, got %d", len(got))
	}

	// Recording an empty set is a no-op, not an error.
	if err := store.RecordDriftItems(ctx, nil); err != nil {
		t.Errorf("empty drift set should not fail: %v", err)
	}
}

func TestOperationRecords(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateRun(ctx, testRun("run-1")); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	failMsg := "permission denied"
	records := []OperationRecord{
		{RunID: "run-1", Seq: 0, Kind: "create_directory", Path: "src", Status: "applied"},
		{RunID: "run-1", Seq: 1, Kind: "create_file", Path: "src/main.py", Status: "failed", Error: &failMsg},
	}
	if err := store.RecordOperations(ctx, records); err != nil {
		t.Fatalf("failed to record operations: %v", err)
	}

	got, err := store.ListOperations(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to list operations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(got))
	}
	if got[0].Seq != 0 || got[1].Seq != 1 {
		t.Errorf("operations should come back in sequence order: %+v", got)
	}
	if got[1].Error == nil || *got[1].Error != failMsg {
		t.Errorf("expected error message preserved, got %+v", got[1])
	}
	if got[0].Error != nil {
		t.Errorf("successful operation should scan back with no error, got %q", *got[0].Error)
	}
}

func TestCascadeDelete(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateRun(ctx, testRun("run-1")); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	items := []DriftItem{{RunID: "run-1", Kind: DriftMissingFile, Directory: "src", Name: "a.go"}}
	if err := store.RecordDriftItems(ctx, items); err != nil {
		t.Fatalf("failed to record drift items: %v", err)
	}

	if _, err := store.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", "run-1"); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}

	got, err := store.ListDriftItems(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to list drift items: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("drift items should cascade on run deletion, got %d", len(got))
	}
}
