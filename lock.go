package layered

import (
	"sort"
	"strings"
)

// LockRegistry is the set of canonical keys currently immutable. Locking a
// key whose value is a subtree implicitly protects its descendants, because
// no merge or set can replace the subtree's root.
type LockRegistry struct {
	locked    map[string]struct{}
	separator string
}

// NewLockRegistry returns an empty registry using the given key separator.
func NewLockRegistry(separator string) *LockRegistry {
	return &LockRegistry{
		locked:    make(map[string]struct{}),
		separator: separator,
	}
}

// Lock marks the canonical key immutable. Entries are never removed.
func (r *LockRegistry) Lock(key string) {
	r.locked[key] = struct{}{}
}

// IsLocked reports whether the key, or any of its ancestors, is locked.
func (r *LockRegistry) IsLocked(key string) bool {
	return r.lockedAncestor(key) != ""
}

// Locked returns the sorted set of explicitly locked keys.
func (r *LockRegistry) Locked() []string {
	keys := make([]string, 0, len(r.locked))
	for key := range r.locked {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// lockedAncestor returns the longest prefix of the key that is locked, or
// the empty string when neither the key nor any ancestor is.
func (r *LockRegistry) lockedAncestor(key string) string {
	parts := strings.Split(key, r.separator)
	for len(parts) > 0 {
		partial := strings.Join(parts, r.separator)
		if _, ok := r.locked[partial]; ok {
			return partial
		}
		parts = parts[:len(parts)-1]
	}
	return ""
}
