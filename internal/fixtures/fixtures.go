// Package fixtures provides the bundled fallback dataset used when the
// bootstrap fetch fails. The application stays usable in this demo-safe
// degraded mode; the fallback is logged so it is never mistaken for a true
// bootstrap success.
package fixtures

import (
	"time"

	"github.com/plantboard/backend/internal/models"
)

// Dataset returns the bundled demo dataset.
func Dataset() *models.Dataset {
	base := models.At(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC))
	at := func(offset time.Duration) models.Timestamp {
		return models.At(base.Add(offset))
	}

	return &models.Dataset{
		ProductionLogs: []models.ProductionLog{
			{
				ID: "fx-log-1", MachineID: "CNC-01", Product: "flange",
				Good: 412, Rejected: 8, Operator: "d.okafor",
				Status: models.LogStatusApproved, CreatedAt: at(0),
				ApprovedAt: at(2 * time.Hour), ApprovedBy: "m.ruiz",
			},
			{
				ID: "fx-log-2", MachineID: "PRESS-02", Product: "bracket",
				Good: 180, Rejected: 3, Operator: "s.lindqvist",
				Status: models.LogStatusPending, CreatedAt: at(3 * time.Hour),
			},
		},
		MaintenanceTasks: []models.MaintenanceTask{
			{
				ID: "fx-task-1", MachineID: "CNC-01", Title: "Spindle lubrication",
				Priority: "high", Status: models.TaskStatusOpen,
				DueAt: at(48 * time.Hour), CreatedAt: at(-24 * time.Hour),
			},
			{
				ID: "fx-task-2", MachineID: "PRESS-02", Title: "Replace hydraulic filter",
				Priority: "medium", Status: models.TaskStatusDone,
				CreatedAt: at(-72 * time.Hour), CompletedAt: at(-2 * time.Hour),
				CompletedBy: "j.barros",
			},
		},
		Tools: []models.Tool{
			{ID: "fx-tool-1", Name: "Torque wrench 40Nm", Location: "Crib A", Status: models.ToolStatusAvailable},
			{ID: "fx-tool-2", Name: "Bore gauge set", Location: "Crib A", Status: models.ToolStatusIssued, IssuedTo: "d.okafor", IssuedAt: at(time.Hour)},
		},
		Alerts: []models.Alert{
			{ID: "fx-alert-1", Severity: "warning", Message: "PRESS-02 cycle time above target", CreatedAt: at(90 * time.Minute)},
		},
		Incidents: []models.SafetyIncident{
			{
				ID: "fx-inc-1", Area: "Assembly line 2", Severity: "minor",
				Description: "Coolant spill near station 4", Status: models.IncidentStatusOpen,
				ReportedAt: at(30 * time.Minute),
			},
		},
		EnergyReadings: []models.EnergyReading{
			{ID: "fx-energy-1", Meter: "MAIN", KWH: 1432.5, ReadAt: at(0)},
			{ID: "fx-energy-2", Meter: "MAIN", KWH: 1511.2, ReadAt: at(time.Hour)},
		},
		Messages: []models.Message{
			{ID: "fx-msg-1", From: "m.ruiz", Body: "Night shift: check CNC-01 coolant level before start", SentAt: at(-8 * time.Hour)},
		},
	}
}
