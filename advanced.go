package layered

import "strings"

// AdvancedConfiguration extends Configuration with symbol-aware merging and
// key locking. Keys in merged data may carry symbolic prefixes in the form
//
//	[MODIFIERS][ACTION][LOCK]KEY
//
// for example "!+#counter": only if counter exists, add the incoming value,
// then lock the key against further overrides.
type AdvancedConfiguration struct {
	*Configuration
}

// NewAdvanced creates an empty AdvancedConfiguration with default options,
// the built-in symbol table, and an empty lock registry.
func NewAdvanced() *AdvancedConfiguration {
	return NewAdvancedWithOptions(DefaultOptions())
}

// NewAdvancedWithOptions is NewAdvanced with explicit options.
func NewAdvancedWithOptions(opts Options) *AdvancedConfiguration {
	c := NewWithOptions(opts)
	c.symbols = NewSymbolTable()
	if opts.LockSymbol != 0 {
		c.symbols.lockSymbol = opts.LockSymbol
	}
	c.locks = NewLockRegistry(c.separator)
	return &AdvancedConfiguration{Configuration: c}
}

// AdvancedFromDicts creates an AdvancedConfiguration and merges the dicts
// in order with symbol parsing enabled.
func AdvancedFromDicts(dicts []map[string]any, names []string) (*AdvancedConfiguration, error) {
	a := NewAdvanced()
	if err := a.MergeDicts(dicts, names); err != nil {
		return nil, err
	}
	return a, nil
}

// AdvancedFromFiles creates an AdvancedConfiguration from parsed files with
// symbol parsing enabled.
func AdvancedFromFiles(paths ...string) (*AdvancedConfiguration, error) {
	a := NewAdvanced()
	if err := a.MergeFiles(paths...); err != nil {
		return nil, err
	}
	return a, nil
}

// RegisterModifier binds a modifier callback to a symbol for use in merged
// key prefixes.
func (a *AdvancedConfiguration) RegisterModifier(symbol rune, fn ModifierFunc) error {
	return a.symbols.RegisterModifier(symbol, fn)
}

// RegisterAction binds an action callback to a symbol for use in merged
// key prefixes.
func (a *AdvancedConfiguration) RegisterAction(symbol rune, fn ActionFunc) error {
	return a.symbols.RegisterAction(symbol, fn)
}

// LockKey explicitly locks a canonical key against merges and sets.
func (a *AdvancedConfiguration) LockKey(key string) {
	a.locks.Lock(key)
}

// IsLocked reports whether the key, or any ancestor, is locked.
func (a *AdvancedConfiguration) IsLocked(key string) bool {
	return a.locks.IsLocked(key)
}

// Locked returns the sorted set of explicitly locked keys.
func (a *AdvancedConfiguration) Locked() []string {
	return a.locks.Locked()
}

// AsDictKeepLocks returns a deep copy of the current state with every
// locked key's lock rendered into the tree: the lock symbol is prepended to
// the top segment of each locked key, e.g. a lock on "a.b" renders the
// top-level key as "#a". The result round-trips through a symbolic merge,
// which re-locks the marked branches.
func (a *AdvancedConfiguration) AsDictKeepLocks() map[string]any {
	tree := a.AsDict()
	lockSymbol := string(a.symbols.LockSymbol())

	marked := make(map[string]struct{})
	for _, key := range a.locks.Locked() {
		top := key
		if i := strings.Index(key, a.separator); i >= 0 {
			top = key[:i]
		}
		marked[top] = struct{}{}
	}

	for top := range marked {
		if value, ok := tree[top]; ok {
			delete(tree, top)
			tree[lockSymbol+top] = value
		}
	}
	return tree
}
