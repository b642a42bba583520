// Package export writes registry contents to interchange formats.
package export

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/matsen/hbnb/internal/codec"
	"github.com/matsen/hbnb/internal/model"
	"github.com/matsen/hbnb/internal/store"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat resolves a format name. Empty means JSON.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unknown export format: %s", name)
}

// Records returns the entities of reg keyed by "Kind.id", each in its
// persisted shape. kind filters when non-empty.
func Records(reg *store.Registry, kind model.Kind) map[string]map[string]any {
	out := make(map[string]map[string]any)
	for _, e := range reg.All(kind) {
		out[e.Key()] = record(e)
	}
	return out
}

// record is the persisted shape with plain float64 numbers.
func record(e *model.Entity) map[string]any {
	m := e.Clone().Attributes
	m[model.AttrID] = e.ID
	m[model.AttrCreatedAt] = codec.FormatTime(e.CreatedAt)
	m[model.AttrUpdatedAt] = codec.FormatTime(e.UpdatedAt)
	m[model.AttrClass] = string(e.Kind)
	return m
}

// Write encodes the entities of reg (all, or only kind) to w.
// JSON output is byte-compatible with the snapshot file.
func Write(w io.Writer, reg *store.Registry, kind model.Kind, format Format) error {
	switch format {
	case FormatJSON, "":
		return writeJSON(w, reg, kind)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Records(reg, kind)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(Records(reg, kind)); err != nil {
			return fmt.Errorf("encoding msgpack: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown export format: %s", format)
}

func writeJSON(w io.Writer, reg *store.Registry, kind model.Kind) error {
	src := reg
	if kind != "" {
		src = store.NewRegistry()
		for _, e := range reg.All(kind) {
			if err := src.Insert(e); err != nil {
				return err
			}
		}
	}
	data, err := store.Marshal(src)
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	_, err = w.Write(data)
	return err
}
