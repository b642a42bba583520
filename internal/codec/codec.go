// Package codec converts entities to and from the plain maps stored in the
// snapshot file.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/hbnb/internal/model"
)

// TimeFormat is the timestamp layout: ISO 8601 with microseconds, no zone.
const TimeFormat = "2006-01-02T15:04:05.000000"

// timeFormatSeconds is accepted on decode for timestamps written without a
// fractional part.
const timeFormatSeconds = "2006-01-02T15:04:05"

// ErrDecode is matched by every *DecodeError.
var ErrDecode = errors.New("decode error")

// DecodeError describes why a stored map could not become an entity.
type DecodeError struct {
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decoding field %q: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Float is a float64 that always encodes to JSON with a fractional part, so
// 1.0 survives a file round trip as a float rather than becoming 1.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
		return json.Marshal(v)
	}
	if math.Abs(v) < 1e16 {
		return []byte(strconv.FormatFloat(v, 'f', 1, 64)), nil
	}
	return []byte(strconv.FormatFloat(v, 'e', -1, 64)), nil
}

// FormatTime renders a timestamp in TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime is the inverse of FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeFormat, s)
	if err == nil {
		return t, nil
	}
	if len(s) == len(timeFormatSeconds) {
		if t2, err2 := time.Parse(timeFormatSeconds, s); err2 == nil {
			return t2, nil
		}
	}
	return time.Time{}, err
}

// Encode returns the serializable form of e: a copy of its attributes plus
// id, created_at, updated_at and the __class__ discriminator.
func Encode(e *model.Entity) map[string]any {
	m := make(map[string]any, len(e.Attributes)+4)
	for k, v := range e.Attributes {
		m[k] = encodeValue(v)
	}
	m[model.AttrID] = e.ID
	m[model.AttrCreatedAt] = FormatTime(e.CreatedAt)
	m[model.AttrUpdatedAt] = FormatTime(e.UpdatedAt)
	m[model.AttrClass] = string(e.Kind)
	return m
}

func encodeValue(v any) any {
	switch x := v.(type) {
	case float64:
		return Float(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = encodeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = encodeValue(item)
		}
		return out
	default:
		return v
	}
}

// Decode rebuilds an entity from its serializable form. The kind is chosen
// by the __class__ discriminator.
func Decode(m map[string]any) (*model.Entity, error) {
	className, err := stringField(m, model.AttrClass)
	if err != nil {
		return nil, err
	}
	kind, err := model.ParseKind(className)
	if err != nil {
		return nil, &DecodeError{Field: model.AttrClass, Reason: "unrecognized type", Err: err}
	}

	id, err := stringField(m, model.AttrID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, &DecodeError{Field: model.AttrID, Reason: "empty"}
	}

	createdAt, err := timeField(m, model.AttrCreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := timeField(m, model.AttrUpdatedAt)
	if err != nil {
		return nil, err
	}
	if updatedAt.Before(createdAt) {
		return nil, &DecodeError{Field: model.AttrUpdatedAt, Reason: "earlier than created_at"}
	}

	e := &model.Entity{
		Kind:       kind,
		ID:         id,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		Attributes: make(map[string]any, len(m)),
	}
	for k, v := range m {
		if model.IsReserved(k) {
			continue
		}
		dv, err := decodeValue(v)
		if err != nil {
			return nil, &DecodeError{Field: k, Reason: "unsupported value", Err: err}
		}
		e.Attributes[k] = dv
	}
	return e, nil
}

// DecodeJSON decodes one JSON object into an entity. Integral numbers
// become int64, all others float64.
func DecodeJSON(data []byte) (*model.Entity, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, &DecodeError{Field: "", Reason: "malformed JSON object", Err: err}
	}
	if m == nil {
		return nil, &DecodeError{Field: "", Reason: "null entry"}
	}
	return Decode(m)
}

func stringField(m map[string]any, name string) (string, error) {
	raw, ok := m[name]
	if !ok {
		return "", &DecodeError{Field: name, Reason: "missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &DecodeError{Field: name, Reason: fmt.Sprintf("expected string, got %T", raw)}
	}
	return s, nil
}

func timeField(m map[string]any, name string) (time.Time, error) {
	s, err := stringField(m, name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, &DecodeError{Field: name, Reason: "bad timestamp", Err: err}
	}
	return t, nil
}

func decodeValue(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		return decodeNumber(x)
	case Float:
		return float64(x), nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			dv, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			dv, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	default:
		return model.Normalize(v)
	}
}

func decodeNumber(n json.Number) (any, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return f, nil
}
