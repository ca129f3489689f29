// Package state provides the in-process store of all domain entities. Every
// user action mutates this store synchronously before anything touches the
// network, so readers always see the optimistic local truth.
package state

import (
	"encoding/json"
	"sync"

	"github.com/plantboard/backend/internal/db"
	"github.com/plantboard/backend/internal/errors"
	"github.com/plantboard/backend/internal/logging"
	"github.com/plantboard/backend/internal/models"
)

// KV persists JSON snapshots of the store. Implemented by db.Repository.
type KV interface {
	GetValue(key string) ([]byte, bool, error)
	SetValue(key string, value []byte) error
}

// Store holds the full domain dataset plus the local-only extras: the theme
// preference and the per-device hidden message list. There is exactly one
// writer path (the dispatcher); readers get copies.
type Store struct {
	mu     sync.RWMutex
	data   *models.Dataset
	hidden map[string]bool
	theme  string
	kv     KV
	log    *logging.Logger
}

// NewStore creates a store and reloads any persisted snapshot, theme and
// hidden-message list. A missing snapshot leaves the dataset empty; the
// caller decides whether to bootstrap from the remote service.
func NewStore(kv KV, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Get()
	}

	s := &Store{
		data:   &models.Dataset{},
		hidden: make(map[string]bool),
		kv:     kv,
		log:    log,
	}

	if raw, ok, err := kv.GetValue(db.KeyState); err != nil {
		return nil, errors.Wrap(errors.ErrPersistence, "reload state snapshot", err)
	} else if ok {
		var data models.Dataset
		if err := json.Unmarshal(raw, &data); err != nil {
			// A corrupt snapshot is not fatal; bootstrap will refill.
			log.Error("persisted state snapshot is corrupt, discarding", err, nil)
		} else {
			s.data = &data
		}
	}

	if raw, ok, _ := kv.GetValue(db.KeyTheme); ok {
		_ = json.Unmarshal(raw, &s.theme)
	}
	if raw, ok, _ := kv.GetValue(db.KeyHiddenMessages); ok {
		var ids []string
		if err := json.Unmarshal(raw, &ids); err == nil {
			for _, id := range ids {
				s.hidden[id] = true
			}
		}
	}

	return s, nil
}

// Loaded reports whether the store carries any data yet.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.data.Empty()
}

// Bootstrap replaces the dataset wholesale, used once at startup.
func (s *Store) Bootstrap(data *models.Dataset) {
	s.mu.Lock()
	s.data = data.Clone()
	s.persistLocked()
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current dataset.
func (s *Store) Snapshot() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// persistLocked writes the snapshot through to the KV store. Failures are
// logged and otherwise ignored: the in-memory state stays authoritative for
// the session.
func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.data)
	if err != nil {
		s.log.Error("marshal state snapshot", err, nil)
		return
	}
	if err := s.kv.SetValue(db.KeyState, raw); err != nil {
		s.log.Error("persist state snapshot failed, state kept in memory", err, nil)
	}
}

// =====================================================
// Production Logs
// =====================================================

// AddProductionLog inserts a new log entry.
func (s *Store) AddProductionLog(entry models.ProductionLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ProductionLogs = append(s.data.ProductionLogs, entry)
	s.persistLocked()
}

// ApproveLog marks a pending log approved.
func (s *Store) ApproveLog(id models.UUID, approver string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.ProductionLogs {
		if s.data.ProductionLogs[i].ID == id {
			s.data.ProductionLogs[i].Status = models.LogStatusApproved
			s.data.ProductionLogs[i].ApprovedAt = models.Now()
			s.data.ProductionLogs[i].ApprovedBy = approver
			s.persistLocked()
			return nil
		}
	}
	return errors.New(errors.ErrNotFound, "production log not found: "+id.String())
}

// =====================================================
// Maintenance
// =====================================================

// AddMaintenanceTask inserts a new task.
func (s *Store) AddMaintenanceTask(task models.MaintenanceTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.MaintenanceTasks = append(s.data.MaintenanceTasks, task)
	s.persistLocked()
}

// CompleteMaintenanceTask marks an open task done.
func (s *Store) CompleteMaintenanceTask(id models.UUID, completedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.MaintenanceTasks {
		if s.data.MaintenanceTasks[i].ID == id {
			s.data.MaintenanceTasks[i].Status = models.TaskStatusDone
			s.data.MaintenanceTasks[i].CompletedAt = models.Now()
			s.data.MaintenanceTasks[i].CompletedBy = completedBy
			s.persistLocked()
			return nil
		}
	}
	return errors.New(errors.ErrNotFound, "maintenance task not found: "+id.String())
}

// =====================================================
// Tool Room
// =====================================================

// IssueTool hands an available tool to a worker.
func (s *Store) IssueTool(id models.UUID, issuedTo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Tools {
		if s.data.Tools[i].ID == id {
			if s.data.Tools[i].Status == models.ToolStatusIssued {
				return errors.New(errors.ErrValidation, "tool already issued: "+id.String())
			}
			s.data.Tools[i].Status = models.ToolStatusIssued
			s.data.Tools[i].IssuedTo = issuedTo
			s.data.Tools[i].IssuedAt = models.Now()
			s.data.Tools[i].ReturnedAt = models.Timestamp{}
			s.persistLocked()
			return nil
		}
	}
	return errors.New(errors.ErrNotFound, "tool not found: "+id.String())
}

// ReturnTool returns an issued tool to the tool room.
func (s *Store) ReturnTool(id models.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Tools {
		if s.data.Tools[i].ID == id {
			if s.data.Tools[i].Status != models.ToolStatusIssued {
				return errors.New(errors.ErrValidation, "tool is not issued: "+id.String())
			}
			s.data.Tools[i].Status = models.ToolStatusAvailable
			s.data.Tools[i].IssuedTo = ""
			s.data.Tools[i].ReturnedAt = models.Now()
			s.persistLocked()
			return nil
		}
	}
	return errors.New(errors.ErrNotFound, "tool not found: "+id.String())
}

// =====================================================
// Alerts, Incidents, Energy
// =====================================================

// AcknowledgeAlert marks an alert acknowledged.
func (s *Store) AcknowledgeAlert(id models.UUID, by string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Alerts {
		if s.data.Alerts[i].ID == id {
			s.data.Alerts[i].Acknowledged = true
			s.data.Alerts[i].AcknowledgedAt = models.Now()
			s.data.Alerts[i].AcknowledgedBy = by
			s.persistLocked()
			return nil
		}
	}
	return errors.New(errors.ErrNotFound, "alert not found: "+id.String())
}

// ResolveIncident closes an open safety incident.
func (s *Store) ResolveIncident(id models.UUID, resolution string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Incidents {
		if s.data.Incidents[i].ID == id {
			s.data.Incidents[i].Status = models.IncidentStatusResolved
			s.data.Incidents[i].ResolvedAt = models.Now()
			s.data.Incidents[i].Resolution = resolution
			s.persistLocked()
			return nil
		}
	}
	return errors.New(errors.ErrNotFound, "incident not found: "+id.String())
}

// AddEnergyReading inserts a meter sample.
func (s *Store) AddEnergyReading(reading models.EnergyReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.EnergyReadings = append(s.data.EnergyReadings, reading)
	s.persistLocked()
}

// =====================================================
// Messages
// =====================================================

// DeleteMessage removes a message for everyone. This mutation goes through
// the sync queue; per-device hiding does not.
func (s *Store) DeleteMessage(id models.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Messages {
		if s.data.Messages[i].ID == id {
			s.data.Messages = append(s.data.Messages[:i], s.data.Messages[i+1:]...)
			s.persistLocked()
			return nil
		}
	}
	return errors.New(errors.ErrNotFound, "message not found: "+id.String())
}

// HideMessage marks a message hidden on this device only. The marker list
// is persisted locally and never queued for sync.
func (s *Store) HideMessage(id models.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden[id.String()] = true
	s.persistHiddenLocked()
}

// HiddenMessages returns the ids hidden on this device.
func (s *Store) HiddenMessages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.hidden))
	for id := range s.hidden {
		ids = append(ids, id)
	}
	return ids
}

// IsHidden reports whether a message is hidden on this device.
func (s *Store) IsHidden(id models.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hidden[id.String()]
}

func (s *Store) persistHiddenLocked() {
	ids := make([]string, 0, len(s.hidden))
	for id := range s.hidden {
		ids = append(ids, id)
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		s.log.Error("marshal hidden messages", err, nil)
		return
	}
	if err := s.kv.SetValue(db.KeyHiddenMessages, raw); err != nil {
		s.log.Error("persist hidden messages failed", err, nil)
	}
}

// =====================================================
// Theme
// =====================================================

// SetTheme stores the user's theme preference locally.
func (s *Store) SetTheme(theme string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	raw, _ := json.Marshal(theme)
	if err := s.kv.SetValue(db.KeyTheme, raw); err != nil {
		s.log.Error("persist theme failed", err, nil)
	}
}

// Theme returns the current theme preference.
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}
