// Package config holds value conversions shared by the ConfigStore adapters.
//
// Values reach a store from three places: TOML decoding (int64, float64,
// []any), Go callers (int, []string), and the command line (string). The
// helpers here accept all of them.
package config

import (
	"strconv"
	"strings"
)

// String returns val as a string, or "" if it is not one.
func String(val any) string {
	s, _ := val.(string)
	return s
}

// Int converts integers, integral floats and numeric strings.
// Anything else yields 0.
func Int(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool converts booleans and "true"/"false" style strings.
func Bool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// StringSlice converts []string, []any of strings, and comma-separated strings.
func StringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return nil
	}
}
