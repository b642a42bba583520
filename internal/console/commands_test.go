package console

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/hbnb/internal/model"
	"github.com/matsen/hbnb/internal/store"
)

func newTestConsole(t *testing.T) (*Console, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.json")
	c, report := Open(path)
	if !report.OK() {
		t.Fatalf("Open: %v", report.Problems())
	}
	return c, path
}

func wantUsage(t *testing.T, err error, msg string) {
	t.Helper()
	var ue *UsageError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want usage error %q", err, msg)
	}
	if ue.Msg != msg {
		t.Errorf("usage message = %q, want %q", ue.Msg, msg)
	}
}

func TestCreatePersists(t *testing.T) {
	c, path := newTestConsole(t)

	id, err := c.Create("City")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned empty id")
	}

	reg, report := store.NewFileStorage(path).Load()
	if !report.OK() {
		t.Fatalf("Load: %v", report.Problems())
	}
	e, err := reg.Get(model.KindCity, id)
	if err != nil {
		t.Fatalf("reloaded Get: %v", err)
	}
	if !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Errorf("created_at %v != updated_at %v on a fresh entity", e.CreatedAt, e.UpdatedAt)
	}
}

func TestCreateErrors(t *testing.T) {
	c, _ := newTestConsole(t)

	tests := []struct {
		name string
		kind string
		want string
	}{
		{"missing", "", MsgClassMissing},
		{"unknown", "Spaceship", MsgClassNotExist},
		{"case sensitive", "city", MsgClassNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Create(tt.kind)
			wantUsage(t, err, tt.want)
		})
	}
}

func TestLookupErrorOrder(t *testing.T) {
	c, _ := newTestConsole(t)

	tests := []struct {
		name string
		kind string
		id   string
		want string
	}{
		{"no class", "", "", MsgClassMissing},
		{"bad class before id", "Spaceship", "", MsgClassNotExist},
		{"no id", "City", "", MsgIDMissing},
		{"unknown id", "City", "1234", MsgNoInstance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Show(tt.kind, tt.id)
			wantUsage(t, err, tt.want)

			err = c.Destroy(tt.kind, tt.id)
			wantUsage(t, err, tt.want)

			err = c.Update(tt.kind, tt.id, "name", "x")
			wantUsage(t, err, tt.want)
		})
	}
}

func TestNotFoundIsDetectable(t *testing.T) {
	c, _ := newTestConsole(t)
	_, err := c.Show("City", "nope")
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
	if !IsUsage(err) {
		t.Errorf("IsUsage(%v) = false", err)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error does not wrap store.ErrNotFound")
	}
}

func TestDestroyUnknownLeavesListing(t *testing.T) {
	c, _ := newTestConsole(t)
	if _, err := c.Create("City"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	before, _ := c.All("")

	err := c.Destroy("City", "does-not-exist")
	wantUsage(t, err, MsgNoInstance)

	after, _ := c.All("")
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("listing changed: before %v, after %v", before, after)
	}
}

func TestDestroyPersists(t *testing.T) {
	c, path := newTestConsole(t)
	id, _ := c.Create("State")

	if err := c.Destroy("State", id); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	reg, _ := store.NewFileStorage(path).Load()
	if reg.Len() != 0 {
		t.Errorf("reloaded registry has %d entities, want 0", reg.Len())
	}
}

func TestAllFiltersByClass(t *testing.T) {
	c, _ := newTestConsole(t)
	cityID, _ := c.Create("City")
	if _, err := c.Create("User"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := c.All("")
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("All() = %d entries, want 2", len(all))
	}

	cities, err := c.All("City")
	if err != nil {
		t.Fatalf("All(City): %v", err)
	}
	if len(cities) != 1 || !strings.HasPrefix(cities[0], "[City] ("+cityID+")") {
		t.Errorf("All(City) = %v", cities)
	}

	_, err = c.All("Spaceship")
	wantUsage(t, err, MsgClassNotExist)
}

func TestCount(t *testing.T) {
	c, _ := newTestConsole(t)
	for i := 0; i < 3; i++ {
		if _, err := c.Create("Review"); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	n, err := c.Count("Review")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count(Review) = %d, want 3", n)
	}

	n, err = c.Count("Amenity")
	if err != nil || n != 0 {
		t.Errorf("Count(Amenity) = %d, %v; want 0, nil", n, err)
	}

	_, err = c.Count("NoSuchType")
	wantUsage(t, err, MsgClassNotExist)
	if !errors.Is(err, model.ErrUnknownKind) {
		t.Errorf("Count error does not wrap ErrUnknownKind")
	}

	_, err = c.Count("")
	wantUsage(t, err, MsgClassMissing)
}

func TestUpdateArgumentErrors(t *testing.T) {
	c, _ := newTestConsole(t)
	id, _ := c.Create("City")

	wantUsage(t, c.Update("City", id), MsgAttrMissing)
	wantUsage(t, c.Update("City", id, ""), MsgAttrMissing)
	wantUsage(t, c.Update("City", id, "name"), MsgValueMissing)
	wantUsage(t, c.Update("City", id, "id", "x"), "** attribute id is read-only **")
	wantUsage(t, c.Update("City", id, "created_at", "x"), "** attribute created_at is read-only **")
}

func TestUpdateCoercesToExistingType(t *testing.T) {
	c, _ := newTestConsole(t)
	id, _ := c.Create("Place")

	tests := []struct {
		attr  string
		value any
		want  any
	}{
		{"number_rooms", "3", int64(3)},
		{"max_guest", 4.0, int64(4)},
		{"latitude", "48.85", 48.85},
		{"longitude", int64(2), 2.0},
		{"name", int64(12), "12"},
		{"amenity_ids", `["a", "b"]`, []any{"a", "b"}},
		{"nickname", "3", "3"},
		{"rating", 4.5, 4.5},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			if err := c.Update("Place", id, tt.attr, tt.value); err != nil {
				t.Fatalf("Update: %v", err)
			}
			e, _ := c.Registry().Get(model.KindPlace, id)
			got := e.Attributes[tt.attr]
			if model.FormatLiteral(got) != model.FormatLiteral(tt.want) {
				t.Errorf("%s = %#v, want %#v", tt.attr, got, tt.want)
			}
		})
	}
}

func TestUpdateRejectsBadValue(t *testing.T) {
	c, _ := newTestConsole(t)
	id, _ := c.Create("Place")
	e, _ := c.Registry().Get(model.KindPlace, id)
	updated := e.UpdatedAt

	err := c.Update("Place", id, "number_rooms", "many")
	wantUsage(t, err, "** invalid value for number_rooms **")

	e, _ = c.Registry().Get(model.KindPlace, id)
	if _, ok := e.Attributes["number_rooms"]; ok {
		t.Error("rejected value was stored")
	}
	if !e.UpdatedAt.Equal(updated) {
		t.Error("rejected update bumped updated_at")
	}
}

func TestUpdateBumpsUpdatedAt(t *testing.T) {
	c, _ := newTestConsole(t)
	id, _ := c.Create("User")
	before, _ := c.Registry().Get(model.KindUser, id)
	created, updated := before.CreatedAt, before.UpdatedAt

	if err := c.Update("User", id, "email", "a@b.c"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, _ := c.Registry().Get(model.KindUser, id)
	if !after.UpdatedAt.After(updated) {
		t.Errorf("updated_at %v not after %v", after.UpdatedAt, updated)
	}
	if !after.CreatedAt.Equal(created) {
		t.Error("created_at changed on update")
	}
}

func TestUpdateBatchAllOrNothing(t *testing.T) {
	c, path := newTestConsole(t)
	id, _ := c.Create("Place")

	err := c.UpdateBatch("Place", id, map[string]any{
		"name":         "Loft",
		"number_rooms": "lots",
	})
	wantUsage(t, err, "** invalid value for number_rooms **")

	e, _ := c.Registry().Get(model.KindPlace, id)
	if len(e.Attributes) != 0 {
		t.Errorf("attributes after rejected batch = %v, want none", e.Attributes)
	}

	err = c.UpdateBatch("Place", id, map[string]any{
		"name":         "Loft",
		"number_rooms": int64(3),
		"latitude":     int64(45),
	})
	if err != nil {
		t.Fatalf("UpdateBatch: %v", err)
	}

	reg, _ := store.NewFileStorage(path).Load()
	e, err = reg.Get(model.KindPlace, id)
	if err != nil {
		t.Fatalf("reloaded Get: %v", err)
	}
	if e.Attributes["name"] != "Loft" || e.Attributes["number_rooms"] != int64(3) || e.Attributes["latitude"] != 45.0 {
		t.Errorf("reloaded attributes = %v", e.Attributes)
	}
}

func TestUpdateBatchRejectsReserved(t *testing.T) {
	c, _ := newTestConsole(t)
	id, _ := c.Create("City")

	err := c.UpdateBatch("City", id, map[string]any{"name": "Paris", "__class__": "User"})
	wantUsage(t, err, "** attribute __class__ is read-only **")

	wantUsage(t, c.UpdateBatch("City", id, nil), MsgInvalidDict)
}

func TestSaveFailureIsNotUsage(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	c, _ := Open(filepath.Join(blocker, "file.json"))

	_, err := c.Create("City")
	if err == nil {
		t.Fatal("Create succeeded with an unwritable snapshot path")
	}
	if IsUsage(err) {
		t.Errorf("save failure reported as usage error: %v", err)
	}
}
