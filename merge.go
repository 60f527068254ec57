package layered

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MergeEntry records one merge call: its 1-based sequence number and the
// source identifier attributed to the values it wrote.
type MergeEntry struct {
	Seq    int
	Source any
}

// mergeTree folds one incoming tree into the owned tree. In symbolic mode
// (symbols wired in) key prefixes are parsed and dispatched; otherwise the
// merge is a plain recursive overwrite.
//
// The merge is not transactional: a symbol or lock error aborts the call and
// leaves writes made earlier in the same call in place. Lock symbols
// encountered during the merge are collected and committed when the call
// returns, so sibling keys in the same payload can still write to a key
// locked by that payload. Pending locks commit even when the call errors:
// the writes behind them succeeded.
func (c *Configuration) mergeTree(incoming map[string]any, source any) error {
	var pending []string
	err := c.mergeNode(incoming, c.data, "", source, &pending)

	// Writes behind a pending lock succeeded even when a later key failed.
	if c.locks != nil {
		for _, key := range pending {
			c.locks.Lock(key)
		}
	}
	return err
}

// mergeNode merges the children of one incoming node into the matching
// destination node. Keys are processed in deterministic order: by base key,
// then raw key, so "+list" applies before "-list" within the same payload.
func (c *Configuration) mergeNode(src, dest map[string]any, path string, source any, pending *[]string) error {
	specs := make([]symbolSpec, 0, len(src))
	for raw := range src {
		spec, err := c.parseMergeKey(raw)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool {
		if specs[i].base != specs[j].base {
			return specs[i].base < specs[j].base
		}
		return specs[i].raw < specs[j].raw
	})

	for _, spec := range specs {
		keyPath := spec.base
		if path != "" {
			keyPath = path + c.separator + spec.base
		}

		incoming := src[spec.raw]
		current := dest[spec.base]

		if c.symbols != nil {
			if !c.symbols.runModifiers(spec, keyPath, current, incoming) {
				continue
			}
			if c.locks != nil && spec.action != '=' {
				if locked := c.locks.lockedAncestor(keyPath); locked != "" {
					return fmt.Errorf("%w: %q", ErrLocked, locked)
				}
			}
		}

		// Tree merging into tree (or nothing): recurse child by child so
		// nested structure is preserved and only present leaves override.
		if incomingMap, isMap := incoming.(map[string]any); isMap {
			node, nodeIsMap := current.(map[string]any)
			if current == nil || nodeIsMap {
				if !nodeIsMap {
					// The slot may hold a null leaf; its attribution
					// dies with it.
					delete(c.sources, keyPath)
					node = make(map[string]any)
					dest[spec.base] = node
				}
				if err := c.mergeNode(incomingMap, node, keyPath, source, pending); err != nil {
					return err
				}
				if spec.lock {
					*pending = append(*pending, keyPath)
				}
				continue
			}
		}

		action := actionOverwrite
		if c.symbols != nil {
			action = c.symbols.resolveAction(spec)
		}
		merged, err := action(current, incoming)
		if err != nil {
			return symbolErrorAt(err, keyPath)
		}

		dest[spec.base] = deepCopyValue(merged)
		c.recordSource(keyPath, merged, source)
		if spec.lock {
			*pending = append(*pending, keyPath)
		}
	}

	return nil
}

// parseMergeKey parses symbol prefixes in symbolic mode; in plain mode the
// raw key is the base key, symbols and all.
func (c *Configuration) parseMergeKey(raw string) (symbolSpec, error) {
	if c.symbols == nil {
		return symbolSpec{raw: raw, base: raw}, nil
	}
	return c.symbols.parseKey(raw)
}

// recordSource points every leaf written at path to the given source and
// drops stale entries for leaves the write removed.
func (c *Configuration) recordSource(path string, value any, source any) {
	prefix := path + c.separator
	for key := range c.sources {
		if key == path || strings.HasPrefix(key, prefix) {
			delete(c.sources, key)
		}
	}

	if tree, isMap := value.(map[string]any); isMap {
		for _, leaf := range leafPaths(tree, path, c.separator) {
			c.sources[leaf] = source
		}
		return
	}
	c.sources[path] = source
}

// symbolErrorAt attaches the offending key to an action failure, wrapping
// foreign errors from user-registered actions in ErrSymbol.
func symbolErrorAt(err error, key string) error {
	if errors.Is(err, ErrSymbol) {
		return fmt.Errorf("%w (key %q)", err, key)
	}
	return fmt.Errorf("%w: action failed at key %q: %w", ErrSymbol, key, err)
}
