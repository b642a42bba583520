// Package store holds the in-memory entity registry and the JSON snapshot
// file it is persisted to.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/matsen/hbnb/internal/codec"
	"github.com/matsen/hbnb/internal/model"
)

// DefaultFilePath is the snapshot file used when nothing else is configured.
const DefaultFilePath = "file.json"

// FileStorage reads and writes registry snapshots: one JSON object mapping
// "Kind.id" to the entity's encoded form.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// SkippedEntry is a snapshot entry dropped during load.
type SkippedEntry struct {
	Key string `json:"key"`
	Err error  `json:"-"`
}

// LoadReport describes problems met while loading a snapshot. Load never
// fails; whatever could not be read is listed here instead.
type LoadReport struct {
	Path    string         `json:"path"`
	Loaded  int            `json:"loaded"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
	Err     error          `json:"-"` // file-level problem (unreadable, malformed JSON)
}

// OK reports whether the snapshot loaded without any problem.
func (r *LoadReport) OK() bool {
	return r.Err == nil && len(r.Skipped) == 0
}

// Problems returns one human-readable line per problem.
func (r *LoadReport) Problems() []string {
	var out []string
	if r.Err != nil {
		out = append(out, fmt.Sprintf("%s: %v", r.Path, r.Err))
	}
	for _, s := range r.Skipped {
		out = append(out, fmt.Sprintf("%s: skipped %s: %v", r.Path, s.Key, s.Err))
	}
	return out
}

// NewFileStorage returns a FileStorage for the snapshot at path.
func NewFileStorage(path string) *FileStorage {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileStorage{path: path}
}

// Path returns the snapshot file path.
func (fs *FileStorage) Path() string {
	return fs.path
}

// Hash returns the SHA256 of the snapshot file.
func (fs *FileStorage) Hash() (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return ComputeFileHash(fs.path)
}

// Marshal encodes every entity of r into the snapshot JSON document.
func Marshal(r *Registry) ([]byte, error) {
	entities := r.snapshot()
	doc := make(map[string]map[string]any, len(entities))
	for key, e := range entities {
		doc[key] = codec.Encode(e)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes every entity of r to the snapshot file, replacing its
// previous contents. On error the previous file is left untouched.
func (fs *FileStorage) Save(r *Registry) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := writeFileAtomic(fs.path, data); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", fs.path, err)
	}
	return nil
}

// Load reads the snapshot file into a new registry. A missing file yields
// an empty registry. Malformed JSON or undecodable entries are reported
// and dropped; every entry that decodes is kept.
func (fs *FileStorage) Load() (*Registry, *LoadReport) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	reg := NewRegistry()
	report := &LoadReport{Path: fs.path}

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			report.Err = fmt.Errorf("reading snapshot: %w", err)
		}
		return reg, report
	}

	Unmarshal(reg, data, report)
	return reg, report
}

// Unmarshal decodes a snapshot document into reg, recording problems in
// report.
func Unmarshal(reg *Registry, data []byte, report *LoadReport) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		report.Err = fmt.Errorf("parsing snapshot: %w", err)
		return
	}

	// Stable replay order; the file format carries none.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		e, err := decodeEntry(key, raw[key])
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedEntry{Key: key, Err: err})
			continue
		}
		if err := reg.Insert(e); err != nil {
			report.Skipped = append(report.Skipped, SkippedEntry{Key: key, Err: err})
			continue
		}
		report.Loaded++
	}
}

func decodeEntry(key string, raw json.RawMessage) (*model.Entity, error) {
	kind, id, err := model.SplitKey(key)
	if err != nil {
		return nil, err
	}
	e, err := codec.DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	if e.Kind != kind || e.ID != id {
		return nil, fmt.Errorf("key does not match entry %s", e.Key())
	}
	return e, nil
}
