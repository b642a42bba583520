package index

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// openDB opens the index database.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

const entitiesDDL = `CREATE TABLE IF NOT EXISTS entities (
  key TEXT PRIMARY KEY,
  class TEXT NOT NULL,
  id TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  attributes TEXT NOT NULL
)`

const classIndexDDL = `CREATE INDEX IF NOT EXISTS idx_entities_class ON entities(class)`

const metaDDL = `CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`

// createTables creates the index tables if they are missing.
func createTables(db *sql.DB) error {
	for _, ddl := range []string{entitiesDDL, classIndexDDL, metaDDL} {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

// getStoredHash retrieves the snapshot hash from the _meta table.
func getStoredHash(db *sql.DB) (string, error) {
	var hash sql.NullString
	err := db.QueryRow("SELECT value FROM _meta WHERE key = 'snapshot_hash'").Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash.String, nil
}

// setStoredHash stores the snapshot hash in the _meta table.
func setStoredHash(tx *sql.Tx, hash string) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('snapshot_hash', ?)`, hash)
	return err
}

// getLastSyncTime retrieves the last sync time from the _meta table.
func getLastSyncTime(db *sql.DB) (time.Time, error) {
	var timeStr sql.NullString
	err := db.QueryRow("SELECT value FROM _meta WHERE key = 'last_sync'").Scan(&timeStr)
	if err == sql.ErrNoRows || (err == nil && !timeStr.Valid) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, timeStr.String)
}

// setLastSyncTime stores the last sync time in the _meta table.
func setLastSyncTime(tx *sql.Tx, t time.Time) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('last_sync', ?)`,
		t.UTC().Format(time.RFC3339))
	return err
}
