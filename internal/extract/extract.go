// Package extract provides schema-tolerant access to nested analysis payloads.
//
// Producers hand us loosely-structured nested maps whose shape drifts between
// versions. Every accessor here is total: any missing key or non-map
// intermediate resolves to a miss, never a panic or error.
package extract

import "strings"

// Get resolves a dot-separated path against a nested map.
// Returns the value and true on a full resolution, nil and false otherwise.
func Get(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetOr resolves a path, returning def when any segment is missing.
func GetOr(data map[string]any, path string, def any) any {
	if v, ok := Get(data, path); ok {
		return v
	}
	return def
}

// Float resolves a path to a *float64. JSON numbers arrive as float64; int and
// int64 values (from hand-built maps in tests and migration) are converted.
// Returns nil on a miss or a non-numeric value.
func Float(data map[string]any, path string) *float64 {
	v, ok := Get(data, path)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	}
	return nil
}

// Int resolves a path to a *int. Float values are truncated.
func Int(data map[string]any, path string) *int {
	v, ok := Get(data, path)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case int:
		return &n
	case int64:
		i := int(n)
		return &i
	case float64:
		i := int(n)
		return &i
	}
	return nil
}

// String resolves a path to a *string. Non-string values are a miss.
func String(data map[string]any, path string) *string {
	v, ok := Get(data, path)
	if !ok {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// Strings resolves a path to a slice of strings, skipping non-string elements.
// Returns nil on a miss or a non-slice value.
func Strings(data map[string]any, path string) []string {
	v, ok := Get(data, path)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		// Hand-built payloads may carry []string directly
		if ss, ok := v.([]string); ok {
			return ss
		}
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
