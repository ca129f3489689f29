// Package db provides repository operations for the durable queue and the
// local key/value store.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/plantboard/backend/internal/models"
)

// Well-known kv_store keys.
const (
	KeyState          = "state"
	KeyTheme          = "theme"
	KeyHiddenMessages = "hidden_messages"
)

// Repository provides persistence operations for queue items and KV values.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// =====================================================
// Queue Item Operations
// =====================================================

// InsertQueueItem appends one queue item. The write is synchronous: when
// this returns nil the item has been committed and survives a crash.
func (r *Repository) InsertQueueItem(item *models.QueueItem) error {
	query := `
	INSERT INTO queue_items (id, action, payload, entity_id, created_at)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, item.ID, item.Action, string(item.Payload),
		item.EntityID, item.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert queue item %s: %w", item.ID, err)
	}
	return nil
}

// ListQueueItems returns all persisted queue items in append order.
func (r *Repository) ListQueueItems() ([]models.QueueItem, error) {
	query := `
	SELECT id, action, payload, entity_id, created_at
	FROM queue_items ORDER BY seq ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.QueueItem
	for rows.Next() {
		var item models.QueueItem
		var payload string
		var entityID sql.NullString
		var createdAt int64
		if err := rows.Scan(&item.ID, &item.Action, &payload, &entityID, &createdAt); err != nil {
			return nil, err
		}
		item.Payload = []byte(payload)
		if entityID.Valid {
			item.EntityID = entityID.String
		}
		item.Timestamp = models.At(time.UnixMilli(createdAt))
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteQueueItems removes the given queue items by id, used after the
// batch containing them is acknowledged.
func (r *Repository) DeleteQueueItems(ids []models.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM queue_items WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("delete queue item %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// CountQueueItems returns the number of persisted queue items.
func (r *Repository) CountQueueItems() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM queue_items").Scan(&n)
	return n, err
}

// =====================================================
// Key/Value Operations
// =====================================================

// SetValue stores a JSON value under key, replacing any previous value.
func (r *Repository) SetValue(key string, value []byte) error {
	query := `
	INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := r.db.Exec(query, key, string(value), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set value %s: %w", key, err)
	}
	return nil
}

// GetValue returns the JSON value stored under key. The second return is
// false when the key has never been written.
func (r *Repository) GetValue(key string) ([]byte, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// DeleteValue removes a key. Missing keys are not an error.
func (r *Repository) DeleteValue(key string) error {
	_, err := r.db.Exec("DELETE FROM kv_store WHERE key = ?", key)
	return err
}
