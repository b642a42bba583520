package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reserved attribute names. They are carried by Entity fields and cannot be
// set as free-form attributes.
const (
	AttrID        = "id"
	AttrCreatedAt = "created_at"
	AttrUpdatedAt = "updated_at"
	AttrClass     = "__class__"
)

var (
	// ErrReservedAttribute is returned when setting id, timestamps or the
	// class discriminator through Set.
	ErrReservedAttribute = errors.New("attribute is read-only")

	// ErrInvalidKey is returned for composite keys not shaped "Kind.id".
	ErrInvalidKey = errors.New("invalid key")
)

// Entity is one stored record.
type Entity struct {
	Kind       Kind
	ID         string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Attributes map[string]any
}

// Now returns the current time at the precision timestamps are stored with.
// Tests replace it to get deterministic clocks.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// New creates an entity of the given kind with a fresh UUIDv4 id.
// UpdatedAt equals CreatedAt.
func New(kind Kind) *Entity {
	ts := Now()
	return &Entity{
		Kind:       kind,
		ID:         uuid.NewString(),
		CreatedAt:  ts,
		UpdatedAt:  ts,
		Attributes: make(map[string]any),
	}
}

// Key returns the composite registry key "Kind.id".
func Key(kind Kind, id string) string {
	return string(kind) + "." + id
}

// SplitKey splits a composite key at its first dot.
func SplitKey(key string) (Kind, string, error) {
	kind, id, ok := strings.Cut(key, ".")
	if !ok || kind == "" || id == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return Kind(kind), id, nil
}

// Key returns the entity's composite registry key.
func (e *Entity) Key() string {
	return Key(e.Kind, e.ID)
}

// IsReserved reports whether name is carried outside the attribute set.
func IsReserved(name string) bool {
	switch name {
	case AttrID, AttrCreatedAt, AttrUpdatedAt, AttrClass:
		return true
	}
	return false
}

// Get returns an attribute value. Attributes never set on the instance fall
// back to the kind's default; the bool reports whether either exists.
func (e *Entity) Get(name string) (any, bool) {
	if v, ok := e.Attributes[name]; ok {
		return v, true
	}
	return e.Kind.Default(name)
}

// Set stores an attribute value. It does not touch UpdatedAt.
func (e *Entity) Set(name string, value any) error {
	if name == "" {
		return errors.New("attribute name is empty")
	}
	if IsReserved(name) {
		return fmt.Errorf("%w: %s", ErrReservedAttribute, name)
	}
	v, err := Normalize(value)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", name, err)
	}
	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	e.Attributes[name] = v
	return nil
}

// Touch records a mutation. UpdatedAt always moves strictly forward, even
// when the clock has not advanced since the previous call.
func (e *Entity) Touch() {
	ts := Now()
	if !ts.After(e.UpdatedAt) {
		ts = e.UpdatedAt.Add(time.Microsecond)
	}
	e.UpdatedAt = ts
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	c := *e
	c.Attributes = make(map[string]any, len(e.Attributes))
	for k, v := range e.Attributes {
		c.Attributes[k] = cloneValue(v)
	}
	return &c
}
