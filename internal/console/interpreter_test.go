package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matsen/hbnb/internal/model"
)

// run executes line and returns the trimmed output.
func run(t *testing.T, it *Interpreter, line string) string {
	t.Helper()
	var out bytes.Buffer
	if _, err := it.Execute(line, &out); err != nil {
		t.Fatalf("Execute(%q): %v", line, err)
	}
	return strings.TrimSpace(out.String())
}

func TestCityScenario(t *testing.T) {
	c, _ := newTestConsole(t)
	it := NewInterpreter(c)

	id := run(t, it, "create City")
	if id == "" {
		t.Fatal("create printed nothing")
	}

	shown := run(t, it, "show City "+id)
	if !strings.Contains(shown, "[City] ("+id+")") {
		t.Errorf("show = %q", shown)
	}

	if got := run(t, it, `update City `+id+` name "Paris"`); got != "" {
		t.Errorf("update printed %q", got)
	}
	shown = run(t, it, "show City "+id)
	if !strings.Contains(shown, "'name': 'Paris'") {
		t.Errorf("show after update = %q", shown)
	}

	if got := run(t, it, "destroy City "+id); got != "" {
		t.Errorf("destroy printed %q", got)
	}
	if got := run(t, it, "show City "+id); got != MsgNoInstance {
		t.Errorf("show after destroy = %q, want %q", got, MsgNoInstance)
	}
}

func TestPlainCommandMessages(t *testing.T) {
	c, _ := newTestConsole(t)
	it := NewInterpreter(c)
	id := run(t, it, "create User")

	tests := []struct {
		line string
		want string
	}{
		{"create", MsgClassMissing},
		{"create MyModel", MsgClassNotExist},
		{"show", MsgClassMissing},
		{"show User", MsgIDMissing},
		{"show User 1234", MsgNoInstance},
		{"destroy Spaceship 1", MsgClassNotExist},
		{"all Spaceship", MsgClassNotExist},
		{"count", MsgClassMissing},
		{"count NoSuchType", MsgClassNotExist},
		{"count User", "1"},
		{"update User " + id, MsgAttrMissing},
		{"update User " + id + " email", MsgValueMissing},
		{"update User " + id + " {broken", MsgInvalidDict},
		{"fly away", "*** Unknown syntax: fly away"},
		{"User.fly()", "*** Unknown syntax: User.fly()"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := run(t, it, tt.line); got != tt.want {
				t.Errorf("%q printed %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestDottedForms(t *testing.T) {
	c, _ := newTestConsole(t)
	it := NewInterpreter(c)

	id := run(t, it, "Place.create()")
	run(t, it, "create City")

	if got := run(t, it, "Place.count()"); got != "1" {
		t.Errorf("Place.count() = %q, want 1", got)
	}

	listing := run(t, it, "Place.all()")
	if !strings.HasPrefix(listing, `["[Place] (`+id+")") {
		t.Errorf("Place.all() = %q", listing)
	}
	if strings.Contains(listing, "[City]") {
		t.Errorf("Place.all() lists a City: %q", listing)
	}

	run(t, it, `Place.update("`+id+`", "name", "Loft")`)
	run(t, it, `Place.update("`+id+`", {"number_rooms": 3, "latitude": 45.5, "description": 'sunny'})`)

	e, err := c.Registry().Get(model.KindPlace, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := map[string]any{
		"name":         "Loft",
		"number_rooms": int64(3),
		"latitude":     45.5,
		"description":  "sunny",
	}
	for k, v := range want {
		if e.Attributes[k] != v {
			t.Errorf("%s = %#v, want %#v", k, e.Attributes[k], v)
		}
	}

	shown := run(t, it, `Place.show("`+id+`")`)
	if !strings.Contains(shown, "'number_rooms': 3") {
		t.Errorf("Place.show() = %q", shown)
	}

	run(t, it, `Place.destroy("`+id+`")`)
	if got := run(t, it, "Place.count()"); got != "0" {
		t.Errorf("count after destroy = %q, want 0", got)
	}
}

func TestDottedUpdateErrors(t *testing.T) {
	c, _ := newTestConsole(t)
	it := NewInterpreter(c)
	id := run(t, it, "create Amenity")

	tests := []struct {
		line string
		want string
	}{
		{`Amenity.show()`, MsgIDMissing},
		{`Amenity.update("` + id + `")`, MsgAttrMissing},
		{`Amenity.update("` + id + `", "name")`, MsgValueMissing},
		{`Amenity.update("` + id + `", {"name": })`, MsgInvalidDict},
		{`Spaceship.update("` + id + `", "name", "x")`, MsgClassNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := run(t, it, tt.line); got != tt.want {
				t.Errorf("%q printed %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestExecuteQuit(t *testing.T) {
	c, _ := newTestConsole(t)
	it := NewInterpreter(c)

	for _, line := range []string{"quit", "EOF", "  quit  "} {
		quit, err := it.Execute(line, io.Discard)
		if err != nil || !quit {
			t.Errorf("Execute(%q) = %v, %v; want true, nil", line, quit, err)
		}
	}

	quit, err := it.Execute("", io.Discard)
	if err != nil || quit {
		t.Errorf("Execute(\"\") = %v, %v; want false, nil", quit, err)
	}
}

func TestRun(t *testing.T) {
	c, _ := newTestConsole(t)
	it := NewInterpreter(c)

	in := strings.NewReader("create State\n\ncount State\nquit\ncount State\n")
	var out bytes.Buffer
	if err := it.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if n := strings.Count(got, Prompt); n != 4 {
		t.Errorf("prompt printed %d times, want 4:\n%s", n, got)
	}
	if !strings.Contains(got, Prompt+"1\n") {
		t.Errorf("count output missing:\n%s", got)
	}
}

func TestRunEndOfInput(t *testing.T) {
	c, _ := newTestConsole(t)
	it := &Interpreter{console: c}

	var out bytes.Buffer
	if err := it.Run(context.Background(), strings.NewReader("all"), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "[]" {
		t.Errorf("output = %q, want []", got)
	}
}

func TestRunCanceled(t *testing.T) {
	c, _ := newTestConsole(t)
	it := NewInterpreter(c)

	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- it.Run(ctx, r, io.Discard)
	}()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
