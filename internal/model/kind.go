// Package model defines the entity kinds kept by the object store and the
// Entity record they share.
package model

import (
	"errors"
	"fmt"
	"sort"
)

// Kind names a concrete entity variant. It doubles as the discriminator
// written to the snapshot file.
type Kind string

const (
	KindBaseModel Kind = "BaseModel"
	KindUser      Kind = "User"
	KindAmenity   Kind = "Amenity"
	KindPlace     Kind = "Place"
	KindReview    Kind = "Review"
	KindState     Kind = "State"
	KindCity      Kind = "City"
)

// ErrUnknownKind is returned when a name does not match a registered kind.
var ErrUnknownKind = errors.New("unknown kind")

// Field is a type-defined default attribute of a kind. Zero holds the
// declared zero value and therefore the attribute's type.
type Field struct {
	Name string
	Zero any
}

type kindInfo struct {
	fields []Field
	byName map[string]any
}

// kinds holds the registered kinds. It is filled at init time and read-only
// afterwards.
var (
	kinds     = make(map[Kind]*kindInfo)
	kindOrder []Kind
)

// Register adds a kind and its default fields.
// It panics if the kind is already registered.
func Register(k Kind, fields ...Field) {
	if _, exists := kinds[k]; exists {
		panic(fmt.Sprintf("model: kind %q already registered", k))
	}
	info := &kindInfo{
		fields: fields,
		byName: make(map[string]any, len(fields)),
	}
	for _, f := range fields {
		info.byName[f.Name] = f.Zero
	}
	kinds[k] = info
	kindOrder = append(kindOrder, k)
}

func init() {
	Register(KindBaseModel)
	Register(KindUser,
		Field{"email", ""},
		Field{"password", ""},
		Field{"first_name", ""},
		Field{"last_name", ""},
	)
	Register(KindAmenity, Field{"name", ""})
	Register(KindPlace,
		Field{"city_id", ""},
		Field{"user_id", ""},
		Field{"name", ""},
		Field{"description", ""},
		Field{"number_rooms", int64(0)},
		Field{"number_bathrooms", int64(0)},
		Field{"max_guest", int64(0)},
		Field{"price_by_night", int64(0)},
		Field{"latitude", 0.0},
		Field{"longitude", 0.0},
		Field{"amenity_ids", []any{}},
	)
	Register(KindReview,
		Field{"place_id", ""},
		Field{"user_id", ""},
		Field{"text", ""},
	)
	Register(KindState, Field{"name", ""})
	Register(KindCity,
		Field{"state_id", ""},
		Field{"name", ""},
	)
}

// ParseKind resolves a kind by its exact name.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Kinds returns the registered kinds in registration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

// KindNames returns the registered kind names sorted alphabetically.
func KindNames() []string {
	names := make([]string, 0, len(kindOrder))
	for _, k := range kindOrder {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

// Valid reports whether k is registered.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Fields returns the kind's default fields in declaration order.
func (k Kind) Fields() []Field {
	info, ok := kinds[k]
	if !ok {
		return nil
	}
	out := make([]Field, len(info.fields))
	for i, f := range info.fields {
		out[i] = Field{Name: f.Name, Zero: cloneValue(f.Zero)}
	}
	return out
}

// Default returns the declared zero value of a default field.
func (k Kind) Default(name string) (any, bool) {
	info, ok := kinds[k]
	if !ok {
		return nil, false
	}
	v, ok := info.byName[name]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}
