package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Each coercer returns (value, isNull, ok). ok is false when v cannot be
// coerced to the column's semantic type.

func coerceObject(v any) (string, bool, bool) {
	switch t := v.(type) {
	case nil:
		return "", true, true
	case string:
		return t, t == "", true
	case *string:
		if t == nil || *t == "" {
			return "", true, true
		}
		return *t, false, true
	case json.Number:
		return t.String(), false, true
	case int:
		return strconv.Itoa(t), false, true
	case int32:
		return strconv.FormatInt(int64(t), 10), false, true
	case int64:
		return strconv.FormatInt(t, 10), false, true
	case uint64:
		return strconv.FormatUint(t, 10), false, true
	case float64:
		if math.IsNaN(t) {
			return "", true, true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), false, true
	case fmt.Stringer:
		return t.String(), false, true
	default:
		return "", false, false
	}
}

func coerceFloat(v any) (float64, bool, bool) {
	switch t := v.(type) {
	case nil:
		return 0, true, true
	case float64:
		return t, math.IsNaN(t), !math.IsInf(t, 0)
	case float32:
		f := float64(t)
		return f, math.IsNaN(f), !math.IsInf(f, 0)
	case int:
		return float64(t), false, true
	case int32:
		return float64(t), false, true
	case int64:
		return float64(t), false, true
	case uint64:
		return float64(t), false, true
	case json.Number:
		f, err := t.Float64()
		return f, false, err == nil
	default:
		return 0, false, false
	}
}

func coerceInt(v any) (int64, bool, bool) {
	switch t := v.(type) {
	case nil:
		return 0, true, true
	case int:
		return int64(t), false, true
	case int32:
		return int64(t), false, true
	case int64:
		return t, false, true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false, false
		}
		return int64(t), false, true
	case float64:
		// JSON decoders hand out integral columns as float64.
		if math.IsNaN(t) {
			return 0, true, true
		}
		if math.IsInf(t, 0) || t != math.Trunc(t) {
			return 0, false, false
		}
		return int64(t), false, true
	case json.Number:
		i, err := t.Int64()
		return i, false, err == nil
	default:
		return 0, false, false
	}
}

func coerceString(v any) (string, bool, bool) {
	switch t := v.(type) {
	case nil:
		return "", true, true
	case string:
		return t, t == "", true
	default:
		return "", false, false
	}
}
