// Package dispatch request payloads and their validation rules. Validation
// runs before any state is mutated.
package dispatch

import (
	"strings"

	"github.com/plantboard/backend/internal/errors"
	"github.com/plantboard/backend/internal/models"
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(errors.ErrValidation, field+" is required")
	}
	return nil
}

// AddProductionLogRequest creates a new production log entry.
type AddProductionLogRequest struct {
	MachineID string `json:"machineId"`
	Product   string `json:"product"`
	Good      int    `json:"good"`
	Rejected  int    `json:"rejected"`
	Operator  string `json:"operator"`
}

func (r AddProductionLogRequest) Validate() error {
	if err := required("machineId", r.MachineID); err != nil {
		return err
	}
	if err := required("product", r.Product); err != nil {
		return err
	}
	if r.Good < 0 || r.Rejected < 0 {
		return errors.New(errors.ErrValidation, "counts must be non-negative")
	}
	return nil
}

// ApproveLogRequest approves a pending production log.
type ApproveLogRequest struct {
	ID         string `json:"id"`
	ApprovedBy string `json:"approvedBy"`
}

func (r ApproveLogRequest) Validate() error {
	return required("id", r.ID)
}

// AddMaintenanceTaskRequest schedules a maintenance job.
type AddMaintenanceTaskRequest struct {
	MachineID string           `json:"machineId"`
	Title     string           `json:"title"`
	Priority  string           `json:"priority"`
	DueAt     models.Timestamp `json:"dueAt,omitempty"`
}

func (r AddMaintenanceTaskRequest) Validate() error {
	if err := required("machineId", r.MachineID); err != nil {
		return err
	}
	return required("title", r.Title)
}

// CompleteTaskRequest closes an open maintenance task.
type CompleteTaskRequest struct {
	ID          string `json:"id"`
	CompletedBy string `json:"completedBy"`
}

func (r CompleteTaskRequest) Validate() error {
	return required("id", r.ID)
}

// IssueToolRequest hands a tool to a worker.
type IssueToolRequest struct {
	ID       string `json:"id"`
	IssuedTo string `json:"issuedTo"`
}

func (r IssueToolRequest) Validate() error {
	if err := required("id", r.ID); err != nil {
		return err
	}
	return required("issuedTo", r.IssuedTo)
}

// ReturnToolRequest returns an issued tool.
type ReturnToolRequest struct {
	ID string `json:"id"`
}

func (r ReturnToolRequest) Validate() error {
	return required("id", r.ID)
}

// AcknowledgeAlertRequest acknowledges an operational alert.
type AcknowledgeAlertRequest struct {
	ID             string `json:"id"`
	AcknowledgedBy string `json:"acknowledgedBy"`
}

func (r AcknowledgeAlertRequest) Validate() error {
	return required("id", r.ID)
}

// ResolveIncidentRequest closes a safety incident.
type ResolveIncidentRequest struct {
	ID         string `json:"id"`
	Resolution string `json:"resolution"`
}

func (r ResolveIncidentRequest) Validate() error {
	if err := required("id", r.ID); err != nil {
		return err
	}
	return required("resolution", r.Resolution)
}

// AddEnergyReadingRequest records a meter sample.
type AddEnergyReadingRequest struct {
	Meter string  `json:"meter"`
	KWH   float64 `json:"kwh"`
}

func (r AddEnergyReadingRequest) Validate() error {
	if err := required("meter", r.Meter); err != nil {
		return err
	}
	if r.KWH < 0 {
		return errors.New(errors.ErrValidation, "kwh must be non-negative")
	}
	return nil
}

// DeleteMessageRequest removes a message for everyone.
type DeleteMessageRequest struct {
	ID string `json:"id"`
}

func (r DeleteMessageRequest) Validate() error {
	return required("id", r.ID)
}
