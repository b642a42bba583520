package console

import (
	"fmt"
	"strconv"

	"github.com/matsen/hbnb/internal/model"
)

// Coerce converts an update value to the type of the attribute's current
// value (instance value or kind default). With no current value, text is
// stored as a string and already-typed literals keep their type.
//
// Text is interpreted, never evaluated: "3" becomes 3 only for an integer
// attribute; a list or dict attribute parses the text as a literal.
func Coerce(current any, hasCurrent bool, v any) (any, error) {
	if !hasCurrent || current == nil {
		return model.Normalize(v)
	}

	switch current.(type) {
	case string:
		return toString(v)
	case int64:
		return toInt(v)
	case float64:
		return toFloat(v)
	case bool:
		return toBool(v)
	case []any:
		return toList(v)
	case map[string]any:
		return toDict(v)
	default:
		return model.Normalize(v)
	}
}

func toString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return model.FormatLiteral(x), nil
	default:
		return nil, fmt.Errorf("cannot use %T as string", v)
	}
}

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case float64:
		if model.IsIntegral(x) {
			return int64(x), nil
		}
		return nil, fmt.Errorf("%v is not a whole number", x)
	case string:
		i, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", x)
		}
		return i, nil
	default:
		return nil, fmt.Errorf("cannot use %T as integer", v)
	}
}

func toFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case string:
		if !looksNumeric(x) {
			return nil, fmt.Errorf("%q is not a number", x)
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", x)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot use %T as float", v)
	}
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch x {
		case "True", "true":
			return true, nil
		case "False", "false":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a boolean", x)
	default:
		return nil, fmt.Errorf("cannot use %T as boolean", v)
	}
}

func toList(v any) (any, error) {
	switch x := v.(type) {
	case []any:
		return model.Normalize(x)
	case string:
		lit, err := ParseLiteral(x)
		if err != nil {
			return nil, err
		}
		list, ok := lit.([]any)
		if !ok {
			return nil, fmt.Errorf("%q is not a list", x)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("cannot use %T as list", v)
	}
}

func toDict(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		return model.Normalize(x)
	case string:
		return ParseDict(x)
	default:
		return nil, fmt.Errorf("cannot use %T as dict", v)
	}
}
