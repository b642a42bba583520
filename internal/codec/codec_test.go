package codec

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/matsen/hbnb/internal/model"
)

func sampleEntity(kind model.Kind) *model.Entity {
	created := time.Date(2026, 10, 19, 9, 15, 30, 250001000, time.UTC)
	e := &model.Entity{
		Kind:       kind,
		ID:         "0b6f3c5e-9a47-4a51-b0b5-1f3f2c8e9d10",
		CreatedAt:  created,
		UpdatedAt:  created.Add(1500 * time.Millisecond),
		Attributes: map[string]any{},
	}
	return e
}

func TestEncode(t *testing.T) {
	e := sampleEntity(model.KindCity)
	e.Attributes["name"] = "Paris"

	m := Encode(e)

	want := map[string]any{
		"id":         e.ID,
		"created_at": "2026-10-19T09:15:30.250001",
		"updated_at": "2026-10-19T09:15:31.750001",
		"__class__":  "City",
		"name":       "Paris",
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("Encode =\n%#v\nwant\n%#v", m, want)
	}

	// Encode must copy, not alias, the attribute map.
	m["name"] = "Lyon"
	if e.Attributes["name"] != "Paris" {
		t.Error("Encode aliased the attribute map")
	}
}

func TestRoundTrip_AllKinds(t *testing.T) {
	for _, kind := range model.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			e := model.New(kind)
			for _, f := range kind.Fields() {
				if err := e.Set(f.Name, f.Zero); err != nil {
					t.Fatalf("Set(%s): %v", f.Name, err)
				}
			}
			if err := e.Set("extra", map[string]any{"n": int64(2), "f": 0.5, "l": []any{"x", int64(1)}}); err != nil {
				t.Fatalf("Set(extra): %v", err)
			}
			e.Touch()

			got, err := Decode(Encode(e))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			assertSameEntity(t, got, e)
		})
	}
}

func TestRoundTrip_JSON(t *testing.T) {
	e := sampleEntity(model.KindPlace)
	e.Attributes["number_rooms"] = int64(3)
	e.Attributes["latitude"] = 48.0
	e.Attributes["longitude"] = 2.35
	e.Attributes["big"] = 1e20
	e.Attributes["amenity_ids"] = []any{"a1", "a2"}
	e.Attributes["meta"] = map[string]any{"floor": int64(2), "ratio": 1.0}

	data, err := json.Marshal(Encode(e))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	assertSameEntity(t, got, e)

	if _, ok := got.Attributes["latitude"].(float64); !ok {
		t.Errorf("latitude decoded as %T, want float64", got.Attributes["latitude"])
	}
	if _, ok := got.Attributes["number_rooms"].(int64); !ok {
		t.Errorf("number_rooms decoded as %T, want int64", got.Attributes["number_rooms"])
	}
}

func TestFloatMarshalJSON(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{48, "48.0"},
		{-3, "-3.0"},
		{2.35, "2.35"},
		{1e20, "1e+20"},
	}
	for _, tt := range tests {
		got, err := json.Marshal(Float(tt.in))
		if err != nil {
			t.Fatalf("Marshal(%v): %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2026-10-19T09:15:30.000042")
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	want := time.Date(2026, 10, 19, 9, 15, 30, 42000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTime = %v, want %v", got, want)
	}

	// Timestamps written without microseconds are accepted.
	got, err = ParseTime("2026-10-19T09:15:30")
	if err != nil {
		t.Fatalf("ParseTime (seconds): %v", err)
	}
	if !got.Equal(want.Truncate(time.Second)) {
		t.Errorf("ParseTime (seconds) = %v", got)
	}

	for _, bad := range []string{"", "yesterday", "2026-10-19", "2026-10-19T09:15:30Z", "2026-10-19T09:15:30.123"} {
		if _, err := ParseTime(bad); err == nil {
			t.Errorf("ParseTime(%q) should fail", bad)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"id":         "abc",
			"created_at": "2026-10-19T09:15:30.000000",
			"updated_at": "2026-10-19T09:15:31.000000",
			"__class__":  "City",
		}
	}

	tests := []struct {
		name   string
		mutate func(m map[string]any)
		field  string
	}{
		{"missing class", func(m map[string]any) { delete(m, "__class__") }, "__class__"},
		{"unknown class", func(m map[string]any) { m["__class__"] = "Spaceship" }, "__class__"},
		{"class not string", func(m map[string]any) { m["__class__"] = 7 }, "__class__"},
		{"missing id", func(m map[string]any) { delete(m, "id") }, "id"},
		{"empty id", func(m map[string]any) { m["id"] = "" }, "id"},
		{"bad created_at", func(m map[string]any) { m["created_at"] = "not a time" }, "created_at"},
		{"missing updated_at", func(m map[string]any) { delete(m, "updated_at") }, "updated_at"},
		{"updated before created", func(m map[string]any) { m["updated_at"] = "2026-10-19T09:15:29.000000" }, "updated_at"},
		{"unsupported attribute", func(m map[string]any) { m["fn"] = func() {} }, "fn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			_, err := Decode(m)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("Decode error = %v, want ErrDecode", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("error %T is not *DecodeError", err)
			}
			if de.Field != tt.field {
				t.Errorf("Field = %q, want %q", de.Field, tt.field)
			}
		})
	}

	if _, err := Decode(valid()); err != nil {
		t.Errorf("Decode(valid): %v", err)
	}
}

func TestDecodeUnknownClassWrapsKindError(t *testing.T) {
	_, err := Decode(map[string]any{"__class__": "Spaceship"})
	if !errors.Is(err, model.ErrUnknownKind) {
		t.Errorf("error = %v, want wrapped ErrUnknownKind", err)
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	for _, in := range []string{`{`, `[]`, `null`, `"x"`} {
		if _, err := DecodeJSON([]byte(in)); !errors.Is(err, ErrDecode) {
			t.Errorf("DecodeJSON(%s) error = %v, want ErrDecode", in, err)
		}
	}
}

func assertSameEntity(t *testing.T, got, want *model.Entity) {
	t.Helper()
	if got.Kind != want.Kind {
		t.Errorf("Kind = %q, want %q", got.Kind, want.Kind)
	}
	if got.ID != want.ID {
		t.Errorf("ID = %q, want %q", got.ID, want.ID)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, want.UpdatedAt)
	}
	if !reflect.DeepEqual(got.Attributes, want.Attributes) {
		t.Errorf("Attributes =\n%#v\nwant\n%#v", got.Attributes, want.Attributes)
	}
}
