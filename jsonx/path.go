// SPDX-License-Identifier: MIT

// Package jsonx provides helpers for JSON-shaped data: dotted-path queries
// and updates on nested maps, key normalization, and a type-preserving
// serialization envelope.
package jsonx

import (
	"fmt"
	"strings"
)

// Query returns the value at the dotted path, descending through nested
// maps. The second return is false when any path element is missing or a
// non-map value is reached before the final element.
func Query(m map[string]any, path string) (any, bool) {
	if m == nil || path == "" {
		return nil, false
	}
	parts := strings.Split(path, ".")
	node := m
	for i, part := range parts {
		v, ok := node[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		node, ok = v.(map[string]any)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

// QueryDefault returns the value at path, or def when absent.
func QueryDefault(m map[string]any, path string, def any) any {
	if v, ok := Query(m, path); ok {
		return v
	}
	return def
}

// Set returns a copy of m with value stored at the dotted path, creating
// intermediate maps as needed. When both the existing and the new value at
// the final element are []any, the lists are merged and scalar duplicates
// removed. The input map is never mutated.
func Set(m map[string]any, path string, value any) map[string]any {
	if path == "" {
		return m
	}
	return setPath(m, strings.Split(path, "."), value)
}

func setPath(m map[string]any, parts []string, value any) map[string]any {
	updated := make(map[string]any, len(m)+1)
	for k, v := range m {
		updated[k] = v
	}

	key := parts[0]
	if len(parts) == 1 {
		if newList, ok := value.([]any); ok {
			if oldList, ok := updated[key].([]any); ok {
				updated[key] = mergeLists(oldList, newList)
				return updated
			}
		}
		updated[key] = value
		return updated
	}

	child, _ := updated[key].(map[string]any)
	if child == nil {
		child = map[string]any{}
	}
	updated[key] = setPath(child, parts[1:], value)
	return updated
}

// mergeLists appends extra to base, dropping scalar values already present.
// Non-comparable elements (nested maps, lists) are kept as-is.
func mergeLists(base, extra []any) []any {
	out := make([]any, 0, len(base)+len(extra))
	seen := make(map[any]struct{})

	add := func(v any) {
		switch v.(type) {
		case map[string]any, []any:
			out = append(out, v)
		default:
			if _, dup := seen[v]; dup {
				return
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}

	for _, v := range base {
		add(v)
	}
	for _, v := range extra {
		add(v)
	}
	return out
}

// Delete returns a copy of m with the value at the dotted path removed.
// Missing paths are a no-op.
func Delete(m map[string]any, path string) map[string]any {
	if m == nil || path == "" {
		return m
	}
	return deletePath(m, strings.Split(path, "."))
}

func deletePath(m map[string]any, parts []string) map[string]any {
	if _, ok := m[parts[0]]; !ok {
		return m
	}

	updated := make(map[string]any, len(m))
	for k, v := range m {
		updated[k] = v
	}

	key := parts[0]
	if len(parts) == 1 {
		delete(updated, key)
		return updated
	}

	child, ok := updated[key].(map[string]any)
	if !ok {
		return updated
	}
	updated[key] = deletePath(child, parts[1:])
	return updated
}

// Increment returns a copy of m with the numeric value at path increased by
// delta, treating a missing value as zero. A non-numeric existing value is
// an error.
func Increment(m map[string]any, path string, delta float64) (map[string]any, error) {
	if m == nil {
		m = map[string]any{}
	}
	current := QueryDefault(m, path, float64(0))

	var base float64
	switch v := current.(type) {
	case float64:
		base = v
	case int:
		base = float64(v)
	case int64:
		base = float64(v)
	default:
		return nil, fmt.Errorf("value at %q is %T, not a number", path, current)
	}

	return Set(m, path, base+delta), nil
}

// MultiUpdate applies every path -> value pair to m, returning the updated copy.
func MultiUpdate(m map[string]any, updates map[string]any) map[string]any {
	out := m
	for path, value := range updates {
		out = Set(out, path, value)
	}
	return out
}

// LowerKeys returns v with all map keys lowercased. With recursive set,
// nested maps and maps inside slices are converted too. Non-map values are
// returned unchanged.
func LowerKeys(v any, recursive bool) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if recursive {
				inner = LowerKeys(inner, true)
			}
			out[strings.ToLower(k)] = inner
		}
		return out
	case []any:
		if !recursive {
			return val
		}
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = LowerKeys(inner, true)
		}
		return out
	default:
		return v
	}
}
