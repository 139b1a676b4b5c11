package backfill

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLedgerUpsertAndGet(t *testing.T) {
	ledger, err := NewLedger(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer func() { _ = ledger.Close() }()

	ctx := t.Context()
	in := Entry{
		RecordPath:  "physical-science/shadows.json",
		Template:    "lesson-guide",
		GradeLevel:  "2",
		Fingerprint: "fp-1",
		Status:      StatusRendered,
		Attempts:    1,
		RunID:       "run-1",
		OutputPath:  "dist/physical-science/shadows_lesson-guide.pdf",
	}
	if err := ledger.Upsert(ctx, in); err != nil {
		t.Fatalf("failed to upsert entry: %v", err)
	}

	got, err := ledger.Get(ctx, in.RecordPath, in.Template, in.GradeLevel)
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry, got nil")
	}
	if got.Fingerprint != in.Fingerprint {
		t.Errorf("expected fingerprint %s, got %s", in.Fingerprint, got.Fingerprint)
	}
	if got.Status != StatusRendered {
		t.Errorf("expected status %s, got %s", StatusRendered, got.Status)
	}
	if got.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", got.Attempts)
	}
	if got.OutputPath != in.OutputPath {
		t.Errorf("expected output path %s, got %s", in.OutputPath, got.OutputPath)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}
}

func TestLedgerGetMissingReturnsNil(t *testing.T) {
	ledger, err := NewLedger(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer func() { _ = ledger.Close() }()

	got, err := ledger.Get(t.Context(), "never/seen.json", "lesson-guide", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing entry, got %+v", got)
	}
}

func TestLedgerUpsertOverwrites(t *testing.T) {
	ledger, err := NewLedger(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer func() { _ = ledger.Close() }()

	ctx := t.Context()
	first := Entry{
		RecordPath:  "life-science/plants.json",
		Template:    "rubric",
		GradeLevel:  "4",
		Fingerprint: "fp-old",
		Status:      StatusFailed,
		Attempts:    3,
		LastError:   "disk full",
	}
	if err := ledger.Upsert(ctx, first); err != nil {
		t.Fatalf("failed to upsert first entry: %v", err)
	}

	second := first
	second.Fingerprint = "fp-new"
	second.Status = StatusRendered
	second.Attempts = 1
	second.LastError = ""
	second.OutputPath = "dist/life-science/plants_rubric.pdf"
	if err := ledger.Upsert(ctx, second); err != nil {
		t.Fatalf("failed to upsert second entry: %v", err)
	}

	got, err := ledger.Get(ctx, first.RecordPath, first.Template, first.GradeLevel)
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got.Fingerprint != "fp-new" {
		t.Errorf("expected fingerprint fp-new, got %s", got.Fingerprint)
	}
	if got.Status != StatusRendered {
		t.Errorf("expected status %s, got %s", StatusRendered, got.Status)
	}
	if got.LastError != "" {
		t.Errorf("expected last_error cleared, got %q", got.LastError)
	}
}

func TestLedgerTracksTemplatesIndependently(t *testing.T) {
	ledger, err := NewLedger(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer func() { _ = ledger.Close() }()

	ctx := t.Context()
	_ = ledger.Upsert(ctx, Entry{RecordPath: "r.json", Template: "lesson-guide", Status: StatusRendered})
	_ = ledger.Upsert(ctx, Entry{RecordPath: "r.json", Template: "exit-ticket", Status: StatusFailed, LastError: "boom"})

	guide, err := ledger.Get(ctx, "r.json", "lesson-guide", "")
	if err != nil || guide == nil {
		t.Fatalf("failed to get lesson-guide entry: %v", err)
	}
	ticket, err := ledger.Get(ctx, "r.json", "exit-ticket", "")
	if err != nil || ticket == nil {
		t.Fatalf("failed to get exit-ticket entry: %v", err)
	}
	if guide.Status != StatusRendered || ticket.Status != StatusFailed {
		t.Errorf("expected rendered/failed split, got %s/%s", guide.Status, ticket.Status)
	}
}

func TestLedgerTracksGradeLevelsIndependently(t *testing.T) {
	ledger, err := NewLedger(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer func() { _ = ledger.Close() }()

	ctx := t.Context()
	_ = ledger.Upsert(ctx, Entry{RecordPath: "r.json", Template: "5e-plan", GradeLevel: "2", Status: StatusRendered, Fingerprint: "fp"})
	_ = ledger.Upsert(ctx, Entry{RecordPath: "r.json", Template: "5e-plan", GradeLevel: "5", Status: StatusFailed, Fingerprint: "fp", LastError: "boom"})

	earlier, err := ledger.Get(ctx, "r.json", "5e-plan", "2")
	if err != nil || earlier == nil {
		t.Fatalf("failed to get grade 2 entry: %v", err)
	}
	later, err := ledger.Get(ctx, "r.json", "5e-plan", "5")
	if err != nil || later == nil {
		t.Fatalf("failed to get grade 5 entry: %v", err)
	}
	if earlier.Status != StatusRendered || later.Status != StatusFailed {
		t.Errorf("expected rendered/failed split, got %s/%s", earlier.Status, later.Status)
	}
}

func TestLedgerClearUnreadable(t *testing.T) {
	ledger, err := NewLedger(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer func() { _ = ledger.Close() }()

	ctx := t.Context()
	_ = ledger.Upsert(ctx, Entry{RecordPath: "x.json", Template: "lesson-guide", Status: StatusFailed, LastError: "invalid JSON"})
	_ = ledger.Upsert(ctx, Entry{RecordPath: "x.json", Template: "lesson-guide", GradeLevel: "2", Status: StatusRendered})
	_ = ledger.Upsert(ctx, Entry{RecordPath: "y.json", Template: "lesson-guide", Status: StatusFailed, LastError: "invalid JSON"})

	if err := ledger.ClearUnreadable(ctx, "x.json"); err != nil {
		t.Fatalf("failed to clear unreadable-record entries: %v", err)
	}

	cleared, err := ledger.Get(ctx, "x.json", "lesson-guide", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared != nil {
		t.Error("expected grade-less failure row to be cleared")
	}
	graded, err := ledger.Get(ctx, "x.json", "lesson-guide", "2")
	if err != nil || graded == nil {
		t.Fatalf("expected graded entry to survive: %v", err)
	}
	other, err := ledger.Get(ctx, "y.json", "lesson-guide", "")
	if err != nil || other == nil {
		t.Fatalf("expected other record's rows to survive: %v", err)
	}
}

func TestLedgerStats(t *testing.T) {
	ledger, err := NewLedger(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer func() { _ = ledger.Close() }()

	ctx := t.Context()
	_ = ledger.Upsert(ctx, Entry{RecordPath: "a.json", Template: "lesson-guide", Status: StatusRendered})
	_ = ledger.Upsert(ctx, Entry{RecordPath: "a.json", Template: "5e-plan", Status: StatusRendered})
	_ = ledger.Upsert(ctx, Entry{RecordPath: "b.json", Template: "lesson-guide", Status: StatusFailed})

	stats, err := ledger.Stats(ctx)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats[StatusRendered] != 2 {
		t.Errorf("expected 2 rendered, got %d", stats[StatusRendered])
	}
	if stats[StatusFailed] != 1 {
		t.Errorf("expected 1 failed, got %d", stats[StatusFailed])
	}
}

func TestLedgerPrune(t *testing.T) {
	ledger, err := NewLedger(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer func() { _ = ledger.Close() }()

	ctx := t.Context()
	_ = ledger.Upsert(ctx, Entry{RecordPath: "keep.json", Template: "lesson-guide", Status: StatusRendered})
	_ = ledger.Upsert(ctx, Entry{RecordPath: "gone.json", Template: "lesson-guide", Status: StatusRendered})
	_ = ledger.Upsert(ctx, Entry{RecordPath: "gone.json", Template: "rubric", Status: StatusFailed})

	pruned, err := ledger.Prune(ctx, map[string]bool{"keep.json": true})
	if err != nil {
		t.Fatalf("failed to prune: %v", err)
	}
	if pruned != 2 {
		t.Errorf("expected 2 pruned rows, got %d", pruned)
	}

	kept, err := ledger.Get(ctx, "keep.json", "lesson-guide", "")
	if err != nil || kept == nil {
		t.Fatalf("expected kept entry to survive prune: %v", err)
	}
	gone, err := ledger.Get(ctx, "gone.json", "lesson-guide", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gone != nil {
		t.Error("expected pruned entry to be gone")
	}
}

func TestLedgerPersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "ledger.db")

	ledger, err := NewLedger(path)
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	stamp := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := ledger.Upsert(t.Context(), Entry{
		RecordPath: "s.json",
		Template:   "lesson-guide",
		Status:     StatusRendered,
		UpdatedAt:  stamp,
	}); err != nil {
		t.Fatalf("failed to upsert entry: %v", err)
	}
	if err := ledger.Close(); err != nil {
		t.Fatalf("failed to close ledger: %v", err)
	}

	reopened, err := NewLedger(path)
	if err != nil {
		t.Fatalf("failed to reopen ledger: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(t.Context(), "s.json", "lesson-guide", "")
	if err != nil {
		t.Fatalf("failed to get entry after reopen: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry to survive reopen")
	}
	if !got.UpdatedAt.Equal(stamp) {
		t.Errorf("expected updated_at %v, got %v", stamp, got.UpdatedAt)
	}
}
