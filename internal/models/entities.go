// Package models provides data model definitions for the PlantBoard backend.
package models

import "database/sql/driver"

// UUID is a wrapper around string for UUID v4 type safety.
type UUID string

// Value implements driver.Valuer for UUID.
func (u UUID) Value() (driver.Value, error) {
	return string(u), nil
}

// Scan implements sql.Scanner for UUID.
func (u *UUID) Scan(value interface{}) error {
	if value == nil {
		*u = ""
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*u = UUID(v)
	case string:
		*u = UUID(v)
	}
	return nil
}

// String returns the string representation of the UUID.
func (u UUID) String() string {
	return string(u)
}

// Production log approval states.
const (
	LogStatusPending  = "pending"
	LogStatusApproved = "approved"
)

// ProductionLog records one shift's output for a machine.
type ProductionLog struct {
	ID         UUID      `json:"id"`
	MachineID  string    `json:"machineId"`
	Product    string    `json:"product"`
	Good       int       `json:"good"`
	Rejected   int       `json:"rejected"`
	Operator   string    `json:"operator"`
	Status     string    `json:"status"`
	CreatedAt  Timestamp `json:"createdAt"`
	ApprovedAt Timestamp `json:"approvedAt,omitempty"`
	ApprovedBy string    `json:"approvedBy,omitempty"`
}

// Maintenance task states.
const (
	TaskStatusOpen = "open"
	TaskStatusDone = "done"
)

// MaintenanceTask is a scheduled or corrective maintenance job.
type MaintenanceTask struct {
	ID          UUID      `json:"id"`
	MachineID   string    `json:"machineId"`
	Title       string    `json:"title"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	DueAt       Timestamp `json:"dueAt,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
	CompletedAt Timestamp `json:"completedAt,omitempty"`
	CompletedBy string    `json:"completedBy,omitempty"`
}

// Tool room states.
const (
	ToolStatusAvailable = "available"
	ToolStatusIssued    = "issued"
)

// Tool is a tool-room asset tracked through issue/return cycles.
type Tool struct {
	ID         UUID      `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	Status     string    `json:"status"`
	IssuedTo   string    `json:"issuedTo,omitempty"`
	IssuedAt   Timestamp `json:"issuedAt,omitempty"`
	ReturnedAt Timestamp `json:"returnedAt,omitempty"`
}

// Alert is an operational alert raised by a line or subsystem.
type Alert struct {
	ID             UUID      `json:"id"`
	Severity       string    `json:"severity"`
	Message        string    `json:"message"`
	Acknowledged   bool      `json:"acknowledged"`
	CreatedAt      Timestamp `json:"createdAt"`
	AcknowledgedAt Timestamp `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy string    `json:"acknowledgedBy,omitempty"`
}

// Safety incident states.
const (
	IncidentStatusOpen     = "open"
	IncidentStatusResolved = "resolved"
)

// SafetyIncident is a reported safety event on the floor.
type SafetyIncident struct {
	ID          UUID      `json:"id"`
	Area        string    `json:"area"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	ReportedAt  Timestamp `json:"reportedAt"`
	ResolvedAt  Timestamp `json:"resolvedAt,omitempty"`
	Resolution  string    `json:"resolution,omitempty"`
}

// EnergyReading is one meter sample for the energy panel.
type EnergyReading struct {
	ID     UUID      `json:"id"`
	Meter  string    `json:"meter"`
	KWH    float64   `json:"kwh"`
	ReadAt Timestamp `json:"readAt"`
}

// Message is a shop-floor message board entry. Hard deletes propagate
// through the sync queue; per-device hiding is tracked locally only.
type Message struct {
	ID     UUID      `json:"id"`
	From   string    `json:"from"`
	Body   string    `json:"body"`
	SentAt Timestamp `json:"sentAt"`
}
