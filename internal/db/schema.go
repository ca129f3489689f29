// Package db provides database schema management.
package db

// Schema holds the full local schema. Two tables only:
//   - queue_items: the durable mutation queue, ordered by the seq rowid so
//     replay order always matches append order across restarts.
//   - kv_store: JSON-valued key/value storage for the state snapshot, theme
//     preference and locally hidden message ids.
const Schema = `
CREATE TABLE IF NOT EXISTS queue_items (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	action TEXT NOT NULL CHECK(length(action) > 0),
	payload TEXT NOT NULL,
	entity_id TEXT,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_queue_items_entity ON queue_items(entity_id);

CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate() error {
	_, err := db.Exec(Schema)
	return err
}
