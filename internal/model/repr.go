package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// String renders "[<Kind>] (<id>) <attributes>" where attributes is a map
// literal holding id, both timestamps and every instance attribute in name
// order, e.g. {'id': '…', 'created_at': datetime.datetime(…), 'name': 'Paris'}.
func (e *Entity) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] (%s) {", e.Kind, e.ID)
	b.WriteString(FormatLiteral(AttrID))
	b.WriteString(": ")
	b.WriteString(FormatLiteral(e.ID))
	b.WriteString(", ")
	b.WriteString(FormatLiteral(AttrCreatedAt))
	b.WriteString(": ")
	b.WriteString(formatDatetime(e.CreatedAt))
	b.WriteString(", ")
	b.WriteString(FormatLiteral(AttrUpdatedAt))
	b.WriteString(": ")
	b.WriteString(formatDatetime(e.UpdatedAt))

	for _, name := range sortedKeys(e.Attributes) {
		b.WriteString(", ")
		b.WriteString(FormatLiteral(name))
		b.WriteString(": ")
		b.WriteString(FormatLiteral(e.Attributes[name]))
	}
	b.WriteString("}")
	return b.String()
}

// FormatLiteral renders a normalized attribute value as a map-literal
// element: single-quoted strings, True/False, None, [..] and {..}.
func FormatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return quoteString(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return formatFloat(x)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = FormatLiteral(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(x))
		for _, k := range sortedKeys(x) {
			parts = append(parts, quoteString(k)+": "+FormatLiteral(x[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func quoteString(s string) string {
	q := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatDatetime renders t the way a datetime constructor call reads,
// dropping trailing zero seconds and microseconds.
func formatDatetime(t time.Time) string {
	args := []int{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute()}
	us := t.Nanosecond() / int(time.Microsecond)
	if us != 0 {
		args = append(args, t.Second(), us)
	} else if t.Second() != 0 {
		args = append(args, t.Second())
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.Itoa(a)
	}
	return "datetime.datetime(" + strings.Join(parts, ", ") + ")"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
