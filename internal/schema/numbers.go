package schema

import "math"

// jsonNumber matches the Number types of encoding/json and goccy/go-json,
// which hold the literal text of a number decoded with UseNumber.
type jsonNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// asFloat reports v as a float64 when it is any Go numeric type or a
// decoded number literal.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case jsonNumber:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, isNumber, isInteger := asInteger(v); isNumber && isInteger {
		return float64(i), true
	}
	return 0, false
}

// asInteger reports whether v is numeric at all and whether it holds an
// integral value representable as int64. 3.0 counts as an integer.
func asInteger(v any) (n int64, isNumber, isInteger bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true, true
	case int8:
		return int64(x), true, true
	case int16:
		return int64(x), true, true
	case int32:
		return int64(x), true, true
	case int64:
		return x, true, true
	case uint8:
		return int64(x), true, true
	case uint16:
		return int64(x), true, true
	case uint32:
		return int64(x), true, true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, true, false
		}
		return int64(x), true, true
	case uint64:
		if x > math.MaxInt64 {
			return 0, true, false
		}
		return int64(x), true, true
	case float32:
		return integralFloat(float64(x))
	case float64:
		return integralFloat(x)
	case jsonNumber:
		if i, err := x.Int64(); err == nil {
			return i, true, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false, false
		}
		return integralFloat(f)
	}
	return 0, false, false
}

func integralFloat(f float64) (int64, bool, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, true, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, true, false
	}
	return int64(f), true, true
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := asFloat(v); ok {
		return "number"
	}
	if _, isNumber, _ := asInteger(v); isNumber {
		return "number"
	}
	return "unknown"
}
