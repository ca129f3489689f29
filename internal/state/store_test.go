// Package state tests for the local entity store.
package state

import (
	"testing"

	"github.com/plantboard/backend/internal/db"
	apperrors "github.com/plantboard/backend/internal/errors"
	"github.com/plantboard/backend/internal/models"
)

// setupTestStore creates a store backed by an in-memory database.
func setupTestStore(t *testing.T) (*Store, *db.Repository, func()) {
	t.Helper()

	database, err := db.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	repo := db.NewRepository(database.DB)

	store, err := NewStore(repo, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store, repo, func() { database.Close() }
}

// TestOptimisticVisibility verifies a mutation is readable immediately
// after the call returns, with no dependency on anything else.
func TestOptimisticVisibility(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	store.AddProductionLog(models.ProductionLog{
		ID:        "p1",
		MachineID: "CNC-04",
		Product:   "bracket",
		Good:      10,
		Rejected:  2,
		Status:    models.LogStatusPending,
		CreatedAt: models.Now(),
	})

	snap := store.Snapshot()
	if len(snap.ProductionLogs) != 1 {
		t.Fatalf("logs = %d, want 1", len(snap.ProductionLogs))
	}
	if snap.ProductionLogs[0].Good != 10 || snap.ProductionLogs[0].Rejected != 2 {
		t.Error("optimistically applied values not visible")
	}
	if snap.ProductionLogs[0].Status != models.LogStatusPending {
		t.Errorf("status = %s, want pending", snap.ProductionLogs[0].Status)
	}
}

// TestApproveLog verifies the approve transform and its not-found error.
func TestApproveLog(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	store.AddProductionLog(models.ProductionLog{ID: "p1", MachineID: "CNC-04", Status: models.LogStatusPending})

	if err := store.ApproveLog("p1", "supervisor"); err != nil {
		t.Fatalf("ApproveLog failed: %v", err)
	}
	snap := store.Snapshot()
	if snap.ProductionLogs[0].Status != models.LogStatusApproved {
		t.Error("log not approved")
	}
	if snap.ProductionLogs[0].ApprovedBy != "supervisor" {
		t.Errorf("ApprovedBy = %q", snap.ProductionLogs[0].ApprovedBy)
	}

	err := store.ApproveLog("missing", "supervisor")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

// TestToolIssueReturnCycle verifies the issue/return lifecycle and its
// validation guards.
func TestToolIssueReturnCycle(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	store.Bootstrap(&models.Dataset{
		Tools: []models.Tool{{ID: "t1", Name: "Caliper", Status: models.ToolStatusAvailable}},
	})

	if err := store.IssueTool("t1", "arul"); err != nil {
		t.Fatalf("IssueTool failed: %v", err)
	}
	if err := store.IssueTool("t1", "ines"); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("double issue should fail validation, got %v", err)
	}

	if err := store.ReturnTool("t1"); err != nil {
		t.Fatalf("ReturnTool failed: %v", err)
	}
	if err := store.ReturnTool("t1"); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("returning an available tool should fail validation, got %v", err)
	}

	snap := store.Snapshot()
	if snap.Tools[0].Status != models.ToolStatusAvailable {
		t.Error("tool should be available after return")
	}
	if snap.Tools[0].IssuedTo != "" {
		t.Error("IssuedTo should be cleared on return")
	}
}

// TestSnapshotPersistsAcrossRestart verifies the snapshot (with revived
// dates) reloads from the KV store.
func TestSnapshotPersistsAcrossRestart(t *testing.T) {
	store, repo, cleanup := setupTestStore(t)
	defer cleanup()

	created := models.Now()
	store.AddProductionLog(models.ProductionLog{
		ID: "p1", MachineID: "CNC-04", Status: models.LogStatusPending, CreatedAt: created,
	})

	// Fresh store over the same KV: simulates a restart.
	reloaded, err := NewStore(repo, nil)
	if err != nil {
		t.Fatalf("NewStore after restart failed: %v", err)
	}
	if !reloaded.Loaded() {
		t.Fatal("reloaded store should carry the persisted snapshot")
	}

	snap := reloaded.Snapshot()
	if len(snap.ProductionLogs) != 1 {
		t.Fatalf("logs after restart = %d, want 1", len(snap.ProductionLogs))
	}
	if !snap.ProductionLogs[0].CreatedAt.Equal(created.Time) {
		t.Errorf("date not revived: got %v, want %v", snap.ProductionLogs[0].CreatedAt, created)
	}
}

// TestHiddenMessagesAreLocalOnly verifies the soft-delete marker list is
// persisted separately from the dataset.
func TestHiddenMessagesAreLocalOnly(t *testing.T) {
	store, repo, cleanup := setupTestStore(t)
	defer cleanup()

	store.Bootstrap(&models.Dataset{
		Messages: []models.Message{{ID: "m1", From: "lev", Body: "shift notes"}},
	})

	store.HideMessage("m1")

	if !store.IsHidden("m1") {
		t.Error("message should be hidden")
	}
	// The message itself stays in the dataset.
	if len(store.Snapshot().Messages) != 1 {
		t.Error("hiding must not remove the message from the dataset")
	}

	reloaded, err := NewStore(repo, nil)
	if err != nil {
		t.Fatalf("NewStore after restart failed: %v", err)
	}
	if !reloaded.IsHidden("m1") {
		t.Error("hidden marker should survive restart")
	}
}

// TestDeleteMessageRemovesForEveryone verifies hard delete removes the
// entity from the dataset.
func TestDeleteMessageRemovesForEveryone(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	store.Bootstrap(&models.Dataset{
		Messages: []models.Message{{ID: "m1"}, {ID: "m2"}},
	})

	if err := store.DeleteMessage("m1"); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
	snap := store.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].ID != "m2" {
		t.Error("wrong message deleted")
	}
}

// TestThemePersists verifies the theme preference round-trips.
func TestThemePersists(t *testing.T) {
	store, repo, cleanup := setupTestStore(t)
	defer cleanup()

	store.SetTheme("dark")
	if store.Theme() != "dark" {
		t.Errorf("Theme = %q, want dark", store.Theme())
	}

	reloaded, err := NewStore(repo, nil)
	if err != nil {
		t.Fatalf("NewStore after restart failed: %v", err)
	}
	if reloaded.Theme() != "dark" {
		t.Errorf("Theme after restart = %q, want dark", reloaded.Theme())
	}
}
