package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/matsen/hbnb/internal/model"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("no instance found")

	// ErrEmptyID is returned when inserting an entity without an id.
	ErrEmptyID = errors.New("entity id is empty")
)

// NotFoundError reports a missing "Kind.id" key.
type NotFoundError struct {
	Kind model.Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Registry is the in-memory collection of entities keyed by "Kind.id".
// Insertion order is kept so listings are deterministic.
//
// Nothing in Registry persists; callers save through FileStorage after
// mutating.
type Registry struct {
	mu      sync.Mutex
	objects map[string]*model.Entity
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]*model.Entity)}
}

// Insert adds e, replacing any entity stored under the same key.
func (r *Registry) Insert(e *model.Entity) error {
	if e == nil || e.ID == "" {
		return ErrEmptyID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := e.Key()
	if _, exists := r.objects[key]; !exists {
		r.order = append(r.order, key)
	}
	r.objects[key] = e
	return nil
}

// Get returns the entity stored under kind and id. The returned pointer is
// the live entity; mutate it through Update to keep the lock discipline.
func (r *Registry) Get(kind model.Kind, id string) (*model.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.objects[model.Key(kind, id)]
	if !ok {
		return nil, &NotFoundError{Kind: kind, ID: id}
	}
	return e, nil
}

// Update runs fn on a copy of the stored entity while holding the lock and
// stores the copy only if fn succeeds, so a failing fn leaves no trace.
func (r *Registry) Update(kind model.Kind, id string, fn func(e *model.Entity) error) (*model.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := model.Key(kind, id)
	e, ok := r.objects[key]
	if !ok {
		return nil, &NotFoundError{Kind: kind, ID: id}
	}
	draft := e.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	r.objects[key] = draft
	return draft, nil
}

// All returns every entity in insertion order, or only those of kind when
// kind is non-empty.
func (r *Registry) All(kind model.Kind) []*model.Entity {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Entity, 0, len(r.order))
	for _, key := range r.order {
		e := r.objects[key]
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Count returns the number of entities whose kind is named kindName.
// An unrecognized name is an error, not zero.
func (r *Registry) Count(kindName string) (int, error) {
	kind, err := model.ParseKind(kindName)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.objects {
		if e.Kind == kind {
			n++
		}
	}
	return n, nil
}

// Delete removes the entity stored under kind and id and reports whether
// it existed.
func (r *Registry) Delete(kind model.Kind, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := model.Key(kind, id)
	if _, ok := r.objects[key]; !ok {
		return false
	}
	delete(r.objects, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns every composite key in insertion order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of stored entities.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// snapshot returns key -> entity copies taken under the lock.
func (r *Registry) snapshot() map[string]*model.Entity {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]*model.Entity, len(r.objects))
	for k, e := range r.objects {
		out[k] = e.Clone()
	}
	return out
}
