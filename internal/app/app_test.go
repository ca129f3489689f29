package app

import (
	"context"
	"testing"
	"time"

	"github.com/plantboard/backend/internal/config"
	apperrors "github.com/plantboard/backend/internal/errors"
	"github.com/plantboard/backend/internal/models"
	"github.com/plantboard/backend/internal/remote"
)

type stubRemote struct {
	data *models.Dataset
	err  error
}

func (s *stubRemote) FetchAll(ctx context.Context) (*models.Dataset, error) {
	return s.data, s.err
}

func (s *stubRemote) ApplyBatch(ctx context.Context, items []models.QueueItem) error {
	return nil
}

var _ remote.Service = (*stubRemote)(nil)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		ListenAddr:    "127.0.0.1:0",
		RemoteBaseURL: "http://localhost:4000",
		DataDir:       t.TempDir(),
		SyncTimeout:   time.Second,
	}
}

func TestBootstrapFromRemote(t *testing.T) {
	svc := &stubRemote{data: &models.Dataset{
		Tools: []models.Tool{{ID: "T1", Name: "Caliper", Status: models.ToolStatusAvailable}},
	}}

	a, err := New(testConfig(t), svc, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	a.Bootstrap(context.Background())
	if a.Source != SourceRemote {
		t.Errorf("Source = %s, want remote", a.Source)
	}
	if len(a.Store.Snapshot().Tools) != 1 {
		t.Error("remote dataset not loaded into store")
	}
}

// TestBootstrapFallsBackToFixtures verifies the demo-safe degraded start:
// when the fetch fails the bundled dataset loads and the failure is
// distinguishable through Source.
func TestBootstrapFallsBackToFixtures(t *testing.T) {
	svc := &stubRemote{err: apperrors.New(apperrors.ErrTransport, "connection refused")}

	a, err := New(testConfig(t), svc, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	a.Bootstrap(context.Background())
	if a.Source != SourceFixtures {
		t.Errorf("Source = %s, want fixtures", a.Source)
	}
	snap := a.Store.Snapshot()
	if len(snap.ProductionLogs) == 0 || len(snap.Tools) == 0 {
		t.Error("fixtures dataset should populate the store")
	}
	if a.Monitor.Online() {
		t.Error("failed bootstrap should mark the remote unreachable")
	}
}

// TestSnapshotWinsOnRestart verifies the persisted snapshot takes priority
// over a fresh fetch on subsequent starts.
func TestSnapshotWinsOnRestart(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg, &stubRemote{data: &models.Dataset{
		Messages: []models.Message{{ID: "m1", From: "shift-lead", Body: "handover"}},
	}}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	first.Bootstrap(context.Background())
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Second start: the remote now errors, but the snapshot is on disk.
	second, err := New(cfg, &stubRemote{err: apperrors.New(apperrors.ErrTransport, "down")}, nil)
	if err != nil {
		t.Fatalf("New (reopen) failed: %v", err)
	}
	defer second.Close()

	second.Bootstrap(context.Background())
	if second.Source != SourceSnapshot {
		t.Errorf("Source = %s, want snapshot", second.Source)
	}
	snap := second.Store.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].ID != "m1" {
		t.Error("persisted snapshot not restored")
	}
}
