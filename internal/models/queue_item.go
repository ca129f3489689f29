// Package models provides data model definitions for the PlantBoard backend.
package models

import "encoding/json"

// QueueItem is one durable record of a pending local mutation awaiting
// remote application. Items are immutable once created; the queue they live
// in is only appended to or drained after a confirmed batch send.
type QueueItem struct {
	ID        UUID            `db:"id" json:"id"`
	Action    string          `db:"action" json:"action"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	EntityID  string          `db:"entity_id" json:"entityId,omitempty"`
	Timestamp Timestamp       `db:"created_at" json:"timestamp"`
}

// TableName returns the table name for QueueItem.
func (QueueItem) TableName() string {
	return "queue_items"
}
