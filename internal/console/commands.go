// Package console implements the hbnb commands over a registry and its
// snapshot file, plus the line interpreter that drives them.
package console

import (
	"errors"
	"fmt"
	"sort"

	"github.com/matsen/hbnb/internal/model"
	"github.com/matsen/hbnb/internal/store"
)

// Console runs commands against a registry and saves it after every
// mutation.
type Console struct {
	reg *store.Registry
	fs  *store.FileStorage
}

// New returns a Console over reg that persists through fs.
func New(reg *store.Registry, fs *store.FileStorage) *Console {
	return &Console{reg: reg, fs: fs}
}

// Open loads the snapshot at path and returns a Console over it. Problems
// met while loading are returned in the report; the console is usable
// either way.
func Open(path string) (*Console, *store.LoadReport) {
	fs := store.NewFileStorage(path)
	reg, report := fs.Load()
	return New(reg, fs), report
}

// Registry returns the underlying registry.
func (c *Console) Registry() *store.Registry {
	return c.reg
}

// Storage returns the snapshot storage.
func (c *Console) Storage() *store.FileStorage {
	return c.fs
}

// Create makes a new entity of the named kind, saves, and returns its id.
func (c *Console) Create(kindName string) (string, error) {
	kind, err := parseKind(kindName)
	if err != nil {
		return "", err
	}
	e := model.New(kind)
	if err := c.reg.Insert(e); err != nil {
		return "", err
	}
	if err := c.save(); err != nil {
		return "", err
	}
	return e.ID, nil
}

// Show returns the string form of the entity.
func (c *Console) Show(kindName, id string) (string, error) {
	e, err := c.lookup(kindName, id)
	if err != nil {
		return "", err
	}
	return e.String(), nil
}

// Destroy deletes the entity and saves.
func (c *Console) Destroy(kindName, id string) error {
	e, err := c.lookup(kindName, id)
	if err != nil {
		return err
	}
	if !c.reg.Delete(e.Kind, e.ID) {
		return usage(MsgNoInstance)
	}
	return c.save()
}

// Get returns the entity, with the same argument checks as Show.
func (c *Console) Get(kindName, id string) (*model.Entity, error) {
	return c.lookup(kindName, id)
}

// List returns every entity, or every entity of the named kind when
// kindName is non-empty, in insertion order.
func (c *Console) List(kindName string) ([]*model.Entity, error) {
	var kind model.Kind
	if kindName != "" {
		k, err := parseKind(kindName)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	return c.reg.All(kind), nil
}

// All returns the string form of every entity, or of every entity of the
// named kind when kindName is non-empty.
func (c *Console) All(kindName string) ([]string, error) {
	entities, err := c.List(kindName)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.String()
	}
	return out, nil
}

// Count returns the number of entities of the named kind.
func (c *Console) Count(kindName string) (int, error) {
	if kindName == "" {
		return 0, usage(MsgClassMissing)
	}
	n, err := c.reg.Count(kindName)
	if errors.Is(err, model.ErrUnknownKind) {
		return 0, &UsageError{Msg: MsgClassNotExist, Err: err}
	}
	return n, err
}

// Update sets one attribute. args holds the attribute name followed by the
// value; the value is coerced to the type the attribute already has.
func (c *Console) Update(kindName, id string, args ...any) error {
	e, err := c.lookup(kindName, id)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return usage(MsgAttrMissing)
	}
	name := argString(args[0])
	if name == "" {
		return usage(MsgAttrMissing)
	}
	if len(args) < 2 {
		return usage(MsgValueMissing)
	}
	return c.apply(e.Kind, e.ID, map[string]any{name: args[1]})
}

// UpdateBatch sets every attribute in attrs. Either all of them are applied
// and saved with a single timestamp bump, or none are.
func (c *Console) UpdateBatch(kindName, id string, attrs map[string]any) error {
	e, err := c.lookup(kindName, id)
	if err != nil {
		return err
	}
	if attrs == nil {
		return usage(MsgInvalidDict)
	}
	return c.apply(e.Kind, e.ID, attrs)
}

func (c *Console) apply(kind model.Kind, id string, attrs map[string]any) error {
	_, err := c.reg.Update(kind, id, func(e *model.Entity) error {
		for _, name := range sortedNames(attrs) {
			if name == "" {
				return usage(MsgAttrMissing)
			}
			if model.IsReserved(name) {
				return usagef(msgReadOnly, name)
			}
			current, has := e.Get(name)
			v, err := Coerce(current, has, attrs[name])
			if err != nil {
				return &UsageError{Msg: fmt.Sprintf(msgInvalidValue, name), Err: err}
			}
			if err := e.Set(name, v); err != nil {
				return &UsageError{Msg: fmt.Sprintf(msgInvalidValue, name), Err: err}
			}
		}
		e.Touch()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return usage(MsgNoInstance)
	}
	if err != nil {
		return err
	}
	return c.save()
}

// lookup resolves kindName and id in the order the messages are checked:
// class missing, class unknown, id missing, no instance.
func (c *Console) lookup(kindName, id string) (*model.Entity, error) {
	kind, err := parseKind(kindName)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, usage(MsgIDMissing)
	}
	e, err := c.reg.Get(kind, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &UsageError{Msg: MsgNoInstance, Err: err}
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (c *Console) save() error {
	if err := c.fs.Save(c.reg); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func parseKind(name string) (model.Kind, error) {
	if name == "" {
		return "", usage(MsgClassMissing)
	}
	kind, err := model.ParseKind(name)
	if err != nil {
		return "", &UsageError{Msg: MsgClassNotExist, Err: err}
	}
	return kind, nil
}

// argString renders a parsed argument used as a name or id.
func argString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
