// Package models provides data model definitions for the PlantBoard backend.
package models

/// Dataset is the full local domain snapshot: every entity collection the
// dashboard reads from. It is the unit of bootstrap (GET /api/data) and of
// local persistence.
type Dataset struct {
	ProductionLogs   []ProductionLog   `json:"productionLogs"`
	MaintenanceTasks []MaintenanceTask `json:"maintenanceTasks"`
	Tools            []Tool            `json:"tools"`
	Alerts           []Alert           `json:"alerts"`
	Incidents        []SafetyIncident  `json:"incidents"`
	EnergyReadings   []EnergyReading   `json:"energyReadings"`
	Messages         []Message         `json:"messages"`
}

// Clone returns a deep copy of the dataset so readers never alias the
// store's internal slices.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return &Dataset{}
	}
	out := &Dataset{
		ProductionLogs:   append([]ProductionLog(nil), d.ProductionLogs...),
		MaintenanceTasks: append([]MaintenanceTask(nil), d.MaintenanceTasks...),
		Tools:            append([]Tool(nil), d.Tools...),
		Alerts:           append([]Alert(nil), d.Alerts...),
		Incidents:        append([]SafetyIncident(nil), d.Incidents...),
		EnergyReadings:   append([]EnergyReading(nil), d.EnergyReadings...),
		Messages:         append([]Message(nil), d.Messages...),
	}
	return out
}

// Empty reports whether the dataset carries no entities at all.
func (d *Dataset) Empty() bool {
	if d == nil {
		return true
	}
	return len(d.ProductionLogs) == 0 &&
		len(d.MaintenanceTasks) == 0 &&
		len(d.Tools) == 0 &&
		len(d.Alerts) == 0 &&
		len(d.Incidents) == 0 &&
		len(d.EnergyReadings) == 0 &&
		len(d.Messages) == 0
}
