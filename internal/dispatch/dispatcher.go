// Package dispatch provides the single point through which every
// state-changing user action passes: validate, apply optimistically to the
// local store, then append a queue record. Apply and enqueue happen under
// one lock so no other dispatch can interleave between them.
package dispatch

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/plantboard/backend/internal/errors"
	"github.com/plantboard/backend/internal/logging"
	"github.com/plantboard/backend/internal/models"
	"github.com/plantboard/backend/internal/queue"
	"github.com/plantboard/backend/internal/state"
	"github.com/plantboard/backend/internal/uuid"
)

// Action tags the closed set of queueable mutation kinds.
type Action string

const (
	ActionAddProductionLog        Action = "add-production-log"
	ActionApproveLog              Action = "approve-log"
	ActionAddMaintenanceTask      Action = "add-maintenance-task"
	ActionCompleteMaintenanceTask Action = "complete-maintenance-task"
	ActionIssueTool               Action = "issue-tool"
	ActionReturnTool              Action = "return-tool"
	ActionAcknowledgeAlert        Action = "acknowledge-alert"
	ActionResolveIncident         Action = "resolve-incident"
	ActionAddEnergyReading        Action = "add-energy-reading"
	ActionDeleteMessage           Action = "delete-message"
)

// knownActions guards against typos from the API surface.
var knownActions = map[Action]bool{
	ActionAddProductionLog:        true,
	ActionApproveLog:              true,
	ActionAddMaintenanceTask:      true,
	ActionCompleteMaintenanceTask: true,
	ActionIssueTool:               true,
	ActionReturnTool:              true,
	ActionAcknowledgeAlert:        true,
	ActionResolveIncident:         true,
	ActionAddEnergyReading:        true,
	ActionDeleteMessage:           true,
}

// Dispatcher applies mutations locally and queues them for sync.
type Dispatcher struct {
	mu    sync.Mutex
	state *state.Store
	queue *queue.DurableQueue
	log   *logging.Logger
}

// NewDispatcher creates a Dispatcher over the given store and queue.
func NewDispatcher(store *state.Store, q *queue.DurableQueue, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Get()
	}
	return &Dispatcher{state: store, queue: q, log: log}
}

// Dispatch validates the payload for action, applies it to the local store
// and appends the corresponding queue record. It returns the id of the
// affected entity. Validation failures reject the call before any state is
// touched; partial application never happens.
func (d *Dispatcher) Dispatch(action Action, payload json.RawMessage) (string, error) {
	if !knownActions[action] {
		return "", errors.New(errors.ErrValidation, "unknown action: "+string(action))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entityID, queuedPayload, err := d.apply(action, payload)
	if err != nil {
		return "", err
	}

	item := models.QueueItem{
		ID:        models.UUID(uuid.New()),
		Action:    string(action),
		Payload:   queuedPayload,
		EntityID:  entityID,
		Timestamp: models.Now(),
	}
	if err := d.queue.Append(item); err != nil {
		// Unreachable today; Append degrades instead of failing.
		return "", errors.Wrap(errors.ErrPersistence, "enqueue mutation", err)
	}

	d.log.Debug("mutation dispatched", logging.Fields{
		"action": action, "entityId": entityID, "pending": d.queue.Len(),
	})
	return entityID, nil
}

// HideMessage marks a message hidden on this device only. Local-only: no
// queue record is created.
func (d *Dispatcher) HideMessage(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New(errors.ErrValidation, "message id is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.HideMessage(models.UUID(id))
	return nil
}

// SetTheme stores the theme preference. Local-only: no queue record.
func (d *Dispatcher) SetTheme(theme string) error {
	if strings.TrimSpace(theme) == "" {
		return errors.New(errors.ErrValidation, "theme is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.SetTheme(theme)
	return nil
}

// apply decodes, validates and executes one action against the store. It
// returns the affected entity id and the normalized payload to queue.
func (d *Dispatcher) apply(action Action, payload json.RawMessage) (string, json.RawMessage, error) {
	switch action {
	case ActionAddProductionLog:
		var req AddProductionLogRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		entry := models.ProductionLog{
			ID:        models.UUID(uuid.New()),
			MachineID: req.MachineID,
			Product:   req.Product,
			Good:      req.Good,
			Rejected:  req.Rejected,
			Operator:  req.Operator,
			Status:    models.LogStatusPending,
			CreatedAt: models.Now(),
		}
		d.state.AddProductionLog(entry)
		return marshalQueued(entry.ID, entry)

	case ActionApproveLog:
		var req ApproveLogRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		if err := d.state.ApproveLog(models.UUID(req.ID), req.ApprovedBy); err != nil {
			return "", nil, err
		}
		return marshalQueued(models.UUID(req.ID), req)

	case ActionAddMaintenanceTask:
		var req AddMaintenanceTaskRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		task := models.MaintenanceTask{
			ID:        models.UUID(uuid.New()),
			MachineID: req.MachineID,
			Title:     req.Title,
			Priority:  req.Priority,
			Status:    models.TaskStatusOpen,
			DueAt:     req.DueAt,
			CreatedAt: models.Now(),
		}
		d.state.AddMaintenanceTask(task)
		return marshalQueued(task.ID, task)

	case ActionCompleteMaintenanceTask:
		var req CompleteTaskRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		if err := d.state.CompleteMaintenanceTask(models.UUID(req.ID), req.CompletedBy); err != nil {
			return "", nil, err
		}
		return marshalQueued(models.UUID(req.ID), req)

	case ActionIssueTool:
		var req IssueToolRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		if err := d.state.IssueTool(models.UUID(req.ID), req.IssuedTo); err != nil {
			return "", nil, err
		}
		return marshalQueued(models.UUID(req.ID), req)

	case ActionReturnTool:
		var req ReturnToolRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		if err := d.state.ReturnTool(models.UUID(req.ID)); err != nil {
			return "", nil, err
		}
		return marshalQueued(models.UUID(req.ID), req)

	case ActionAcknowledgeAlert:
		var req AcknowledgeAlertRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		if err := d.state.AcknowledgeAlert(models.UUID(req.ID), req.AcknowledgedBy); err != nil {
			return "", nil, err
		}
		return marshalQueued(models.UUID(req.ID), req)

	case ActionResolveIncident:
		var req ResolveIncidentRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		if err := d.state.ResolveIncident(models.UUID(req.ID), req.Resolution); err != nil {
			return "", nil, err
		}
		return marshalQueued(models.UUID(req.ID), req)

	case ActionAddEnergyReading:
		var req AddEnergyReadingRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		reading := models.EnergyReading{
			ID:     models.UUID(uuid.New()),
			Meter:  req.Meter,
			KWH:    req.KWH,
			ReadAt: models.Now(),
		}
		d.state.AddEnergyReading(reading)
		return marshalQueued(reading.ID, reading)

	case ActionDeleteMessage:
		var req DeleteMessageRequest
		if err := decode(payload, &req); err != nil {
			return "", nil, err
		}
		if err := req.Validate(); err != nil {
			return "", nil, err
		}
		if err := d.state.DeleteMessage(models.UUID(req.ID)); err != nil {
			return "", nil, err
		}
		return marshalQueued(models.UUID(req.ID), req)
	}

	return "", nil, errors.New(errors.ErrValidation, "unknown action: "+string(action))
}

func decode(payload json.RawMessage, into interface{}) error {
	if len(payload) == 0 {
		return errors.New(errors.ErrValidation, "payload is required")
	}
	if err := json.Unmarshal(payload, into); err != nil {
		return errors.Wrap(errors.ErrValidation, "malformed payload", err)
	}
	return nil
}

func marshalQueued(entityID models.UUID, v interface{}) (string, json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInternal, "marshal queue payload", err)
	}
	return entityID.String(), raw, nil
}
