package layered

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSeparator joins the segments of a canonical key string.
const DefaultSeparator = "."

// splitKey splits a separator-delimited key string into its segments.
// Empty segments (from leading, trailing, or doubled separators) are invalid.
func splitKey(key, separator string) ([]string, error) {
	segments := strings.Split(key, separator)
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidKey, key)
		}
	}
	return segments, nil
}

// joinKey is the inverse of splitKey: joinKey(splitKey(s)) == s for any s
// without empty segments.
func joinKey(segments []string, separator string) string {
	return strings.Join(segments, separator)
}

// resolvePath walks the segments into nested maps and returns the value at
// the end of the path. It fails when an intermediate node is missing, or is
// a leaf while segments remain.
func resolvePath(tree map[string]any, segments []string, separator string) (any, error) {
	var current any = tree
	for i, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a tree", ErrKeyNotFound, joinKey(segments[:i], separator))
		}
		value, exists := node[segment]
		if !exists {
			return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, joinKey(segments[:i+1], separator))
		}
		current = value
	}
	return current, nil
}

// flattenMap converts a nested map to a flat map keyed by canonical path.
func flattenMap(nested map[string]any, prefix, separator string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		path := key
		if prefix != "" {
			path = prefix + separator + key
		}

		if nestedMap, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenMap(nestedMap, path, separator) {
				flat[subPath] = subValue
			}
		} else {
			flat[path] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map using a canonical path,
// creating intermediate maps as needed. A non-map intermediate is replaced.
func setNestedValue(nested map[string]any, segments []string, value any) {
	current := nested
	for _, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if nextMap, isMap := next.(map[string]any); exists && isMap {
			current = nextMap
			continue
		}
		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}
	current[segments[len(segments)-1]] = value
}

// deepCopyValue copies trees and slices so the stored state never aliases
// caller-supplied data.
func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return deepCopyMap(v)
	case []any:
		copied := make([]any, len(v))
		for i, elem := range v {
			copied[i] = deepCopyValue(elem)
		}
		return copied
	default:
		return v
	}
}

func deepCopyMap(tree map[string]any) map[string]any {
	copied := make(map[string]any, len(tree))
	for key, value := range tree {
		copied[key] = deepCopyValue(value)
	}
	return copied
}

// leafPaths returns the sorted canonical keys of every leaf under the tree.
func leafPaths(tree map[string]any, prefix, separator string) []string {
	flat := flattenMap(tree, prefix, separator)
	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
