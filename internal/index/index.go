// Package index mirrors the snapshot into an ephemeral SQLite database for
// exact class lookups. The snapshot file stays the source of truth; the
// index can be deleted and rebuilt at any time.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matsen/hbnb/internal/codec"
	"github.com/matsen/hbnb/internal/model"
	"github.com/matsen/hbnb/internal/store"
)

// DefaultPath is the index database used when nothing else is configured.
const DefaultPath = "file.db"

// Index is a SQLite mirror of a registry snapshot.
type Index struct {
	path string
}

// Row is one indexed entity.
type Row struct {
	Key        string         `json:"key"`
	Class      string         `json:"class"`
	ID         string         `json:"id"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
	Attributes map[string]any `json:"attributes"`
}

// Info describes the state of the index.
type Info struct {
	Path     string         `json:"path"`
	Entities int            `json:"entities"`
	ByClass  map[string]int `json:"by_class"`
	Size     int64          `json:"size"`
	LastSync time.Time      `json:"last_sync,omitempty"`
	InSync   bool           `json:"in_sync"`
}

// New returns an Index stored at path.
func New(path string) *Index {
	if path == "" {
		path = DefaultPath
	}
	return &Index{path: path}
}

// Path returns the database path.
func (ix *Index) Path() string {
	return ix.path
}

// NeedsSync reports whether the index was built from a snapshot other than
// the one with the given hash.
func (ix *Index) NeedsSync(snapshotHash string) (bool, error) {
	if _, err := os.Stat(ix.path); os.IsNotExist(err) {
		return true, nil
	}

	db, err := openDB(ix.path)
	if err != nil {
		return true, err
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return true, err
	}

	storedHash, err := getStoredHash(db)
	if err != nil {
		return true, err
	}
	return storedHash != snapshotHash, nil
}

// Sync rebuilds the index from reg and records snapshotHash.
// Returns the number of indexed entities.
func (ix *Index) Sync(reg *store.Registry, snapshotHash string) (int, error) {
	db, err := openDB(ix.path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entities"); err != nil {
		return 0, fmt.Errorf("clearing entities: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO entities (key, class, id, created_at, updated_at, attributes)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	entities := reg.All("")
	for i, e := range entities {
		attrs, err := encodeAttributes(e)
		if err != nil {
			return 0, fmt.Errorf("encoding %s: %w", e.Key(), err)
		}
		if _, err := stmt.Exec(e.Key(), string(e.Kind), e.ID,
			codec.FormatTime(e.CreatedAt), codec.FormatTime(e.UpdatedAt), attrs); err != nil {
			return 0, fmt.Errorf("inserting entity %d: %w", i+1, err)
		}
	}

	if err := setStoredHash(tx, snapshotHash); err != nil {
		return 0, fmt.Errorf("updating hash: %w", err)
	}
	if err := setLastSyncTime(tx, time.Now()); err != nil {
		return 0, fmt.Errorf("updating sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return len(entities), nil
}

// List returns indexed rows ordered by key, filtered by kind when kind is
// non-empty.
func (ix *Index) List(kind model.Kind) ([]Row, error) {
	db, err := openDB(ix.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return nil, err
	}

	query := "SELECT key, class, id, created_at, updated_at, attributes FROM entities"
	var args []any
	if kind != "" {
		query += " WHERE class = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY key"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var attrs string
		if err := rows.Scan(&r.Key, &r.Class, &r.ID, &r.CreatedAt, &r.UpdatedAt, &attrs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(attrs), &r.Attributes); err != nil {
			return nil, fmt.Errorf("decoding attributes of %s: %w", r.Key, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Counts returns the number of indexed entities per class.
func (ix *Index) Counts() (map[string]int, error) {
	db, err := openDB(ix.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return nil, err
	}
	return countByClass(db)
}

// Info returns the state of the index relative to the snapshot hash.
func (ix *Index) Info(snapshotHash string) (*Info, error) {
	info := &Info{Path: ix.path, ByClass: map[string]int{}}

	stat, err := os.Stat(ix.path)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat index: %w", err)
	}
	info.Size = stat.Size()

	db, err := openDB(ix.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return nil, err
	}

	counts, err := countByClass(db)
	if err != nil {
		return nil, err
	}
	info.ByClass = counts
	for _, n := range counts {
		info.Entities += n
	}

	storedHash, err := getStoredHash(db)
	if err != nil {
		return nil, err
	}
	info.InSync = storedHash != "" && storedHash == snapshotHash

	lastSync, err := getLastSyncTime(db)
	if err == nil && !lastSync.IsZero() {
		info.LastSync = lastSync
	}
	return info, nil
}

func countByClass(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query("SELECT class, COUNT(*) FROM entities GROUP BY class")
	if err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return nil, err
		}
		counts[class] = n
	}
	return counts, rows.Err()
}

// encodeAttributes renders the instance attributes as a JSON object.
func encodeAttributes(e *model.Entity) (string, error) {
	m := codec.Encode(e)
	for _, k := range []string{model.AttrID, model.AttrCreatedAt, model.AttrUpdatedAt, model.AttrClass} {
		delete(m, k)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
