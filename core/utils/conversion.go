package utils

import (
	"fmt"
	"strconv"
)

// ToInt64 converts various types to int64 using explicit type switching.
// XML-RPC decodes integers as int64 but some servers hand back doubles or
// strings for id fields, so all of those are handled.
func ToInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case string:
		i, _ := strconv.ParseInt(v, 10, 64)
		return i
	case []byte:
		i, _ := strconv.ParseInt(string(v), 10, 64)
		return i
	default:
		s := fmt.Sprintf("%v", v)
		i, _ := strconv.ParseInt(s, 10, 64)
		return i
	}
}

// ToFloat converts various types to float64. Odoo monetary fields arrive as
// XML-RPC doubles, but integers show up when the stored value is whole.
func ToFloat(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		s := fmt.Sprintf("%v", v)
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
}

// ToString converts various types to string. A boolean false converts to the
// empty string because Odoo uses false as the sentinel for unset char fields.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if !v {
			return ""
		}
		return "true"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
