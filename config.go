package layered

import (
	"fmt"
	"sort"
	"strings"
)

// Options configures how a Configuration is assembled. The zero value is
// not usable; start from DefaultOptions.
type Options struct {
	// Separator joins the segments of canonical key strings.
	Separator string

	// Loader parses configuration files into nested maps.
	Loader FileLoader

	// Env reads ordered path lists from environment variables.
	Env EnvReader

	// Cache stores named snapshots. Shared across Configurations that are
	// handed the same store; the package default is process-wide.
	Cache CacheStore

	// LockSymbol is the rune marking a key immutable in symbolic merges.
	// Only consulted by AdvancedConfiguration; zero means DefaultLockSymbol.
	LockSymbol rune
}

// DefaultOptions returns the standard options: dot separator, the
// multi-format file loader, the OS environment reader, and the process-wide
// snapshot store.
func DefaultOptions() Options {
	return Options{
		Separator:  DefaultSeparator,
		Loader:     StdFileLoader{},
		Env:        OSEnvReader{},
		Cache:      defaultCacheStore,
		LockSymbol: DefaultLockSymbol,
	}
}

// Configuration owns a merged configuration tree together with per-leaf
// source attribution and merge-order bookkeeping. Values merge in layers:
// later merges override earlier ones leaf by leaf, preserving old values
// the new data does not mention.
//
// A Configuration is not internally synchronized. Concurrent reads are
// safe with each other but not with a concurrent Merge, Set, or lock;
// callers needing concurrent mutation must serialize externally.
type Configuration struct {
	data      map[string]any
	sources   map[string]any
	record    []MergeEntry
	count     int
	separator string

	loader FileLoader
	env    EnvReader
	cache  CacheStore

	// Wired in by AdvancedConfiguration; nil disables symbol parsing and
	// lock enforcement entirely.
	symbols *SymbolTable
	locks   *LockRegistry
}

// New creates an empty Configuration with default options.
func New() *Configuration {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates an empty Configuration with the given options.
// Zero-valued fields fall back to their defaults.
func NewWithOptions(opts Options) *Configuration {
	defaults := DefaultOptions()
	if opts.Separator == "" {
		opts.Separator = defaults.Separator
	}
	if opts.Loader == nil {
		opts.Loader = defaults.Loader
	}
	if opts.Env == nil {
		opts.Env = defaults.Env
	}
	if opts.Cache == nil {
		opts.Cache = defaults.Cache
	}

	return &Configuration{
		data:      make(map[string]any),
		sources:   make(map[string]any),
		separator: opts.Separator,
		loader:    opts.Loader,
		env:       opts.Env,
		cache:     opts.Cache,
	}
}

// FromDicts creates a Configuration and merges the dicts in order; later
// dicts override earlier ones for any leaf key both define. Names, when
// provided, are zipped with the dicts as source identifiers.
func FromDicts(dicts []map[string]any, names []string) (*Configuration, error) {
	c := New()
	if err := c.MergeDicts(dicts, names); err != nil {
		return nil, err
	}
	return c, nil
}

// FromFiles creates a Configuration from parsed files, first to last, with
// each path doubling as the source name.
func FromFiles(paths ...string) (*Configuration, error) {
	c := New()
	if err := c.MergeFiles(paths...); err != nil {
		return nil, err
	}
	return c, nil
}

// FromEnvironment reads an ordered list of file paths from the named
// environment variable (first entry is lowest precedence) and merges the
// files. With cached set, a snapshot previously stored under the variable
// name is returned instead of touching the loader. A freshly computed
// result is not cached automatically; call Cache to opt in.
func FromEnvironment(varName string, cached bool) (*Configuration, error) {
	return FromEnvironmentWithOptions(varName, cached, DefaultOptions())
}

// FromEnvironmentWithOptions is FromEnvironment with explicit options.
func FromEnvironmentWithOptions(varName string, cached bool, opts Options) (*Configuration, error) {
	c := NewWithOptions(opts)

	if cached {
		if snap, ok := c.cache.Get(varName); ok {
			c.restore(snap)
			return c, nil
		}
	}

	paths, err := c.env.ReadPathList(varName)
	if err != nil {
		return nil, err
	}
	if err := c.MergeFiles(paths...); err != nil {
		return nil, err
	}
	return c, nil
}

// FromCache restores the snapshot stored under the given name into a new
// Configuration. It fails with ErrCacheMiss when no snapshot exists.
func FromCache(name string) (*Configuration, error) {
	return FromCacheWithOptions(name, DefaultOptions())
}

// FromCacheWithOptions is FromCache with explicit options.
func FromCacheWithOptions(name string, opts Options) (*Configuration, error) {
	c := NewWithOptions(opts)
	snap, ok := c.cache.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCacheMiss, name)
	}
	c.restore(snap)
	return c, nil
}

// Merge writes the leaf keys of data into the Configuration, overriding
// conflicts. The name identifies where the values originated; when empty,
// the 1-based ordinal of this merge call is used instead. The ordinal
// advances whether or not a name is given.
//
// Merge is not transactional: on error, writes made before the failing key
// remain (snapshot with AsDict first when atomicity is needed).
func (c *Configuration) Merge(data map[string]any, name string) error {
	c.count++
	var source any = name
	if name == "" {
		source = c.count
	}
	c.record = append(c.record, MergeEntry{Seq: c.count, Source: source})
	return c.mergeTree(data, source)
}

// MergeDicts merges each dict in order, zipping names with dicts as source
// identifiers. Dicts beyond the names slice merge unnamed.
func (c *Configuration) MergeDicts(dicts []map[string]any, names []string) error {
	for i, data := range dicts {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if err := c.Merge(data, name); err != nil {
			return err
		}
	}
	return nil
}

// MergeFiles loads and merges each path in order, with the last path
// providing final override values. Each path is used as the source name.
func (c *Configuration) MergeFiles(paths ...string) error {
	for _, path := range paths {
		data, err := c.loader.LoadFile(path)
		if err != nil {
			return err
		}
		if err := c.Merge(data, path); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves the value at a canonical key, walking nested trees.
func (c *Configuration) Get(key string) (any, error) {
	segments, err := splitKey(key, c.separator)
	if err != nil {
		return nil, err
	}
	value, err := resolvePath(c.data, segments, c.separator)
	if err != nil {
		return nil, err
	}
	return deepCopyValue(value), nil
}

// GetDefault is Get with a fallback returned for any failed lookup.
func (c *Configuration) GetDefault(key string, fallback any) any {
	value, err := c.Get(key)
	if err != nil {
		return fallback
	}
	return value
}

// Set writes a value at a canonical key, creating intermediate trees as
// needed. The write bypasses merge bookkeeping: no source-map entry is
// recorded for the new value, though attribution for values the write
// displaces is dropped. In an AdvancedConfiguration a locked key rejects
// the write.
func (c *Configuration) Set(key string, value any) error {
	segments, err := splitKey(key, c.separator)
	if err != nil {
		return err
	}
	if c.locks != nil {
		if locked := c.locks.lockedAncestor(key); locked != "" {
			return fmt.Errorf("%w: %q", ErrLocked, locked)
		}
	}
	setNestedValue(c.data, segments, deepCopyValue(value))

	// Displaced values lose their attribution: the key itself, leaves
	// below it, and any ancestor leaf replaced by an intermediate tree.
	prefix := key + c.separator
	for k := range c.sources {
		if k == key || strings.HasPrefix(k, prefix) {
			delete(c.sources, k)
		}
	}
	for i := 1; i < len(segments); i++ {
		delete(c.sources, joinKey(segments[:i], c.separator))
	}
	return nil
}

// AsDict returns a deep copy of the configuration in its current state.
func (c *Configuration) AsDict() map[string]any {
	return deepCopyMap(c.data)
}

// Keys returns the sorted canonical keys of every leaf currently present.
func (c *Configuration) Keys() []string {
	return leafPaths(c.data, "", c.separator)
}

// Source returns the identifier of the merge call that supplied the leaf's
// current value.
func (c *Configuration) Source(key string) (any, error) {
	source, ok := c.sources[key]
	if !ok {
		return nil, fmt.Errorf("%w: no source for %q", ErrKeyNotFound, key)
	}
	return source, nil
}

// Sources returns the inverse index: each source identifier mapped to the
// sorted keys it contributed to the current state. Only keys currently
// present appear; sources fully overridden by later merges have no entry.
func (c *Configuration) Sources() map[any][]string {
	index := make(map[any][]string)
	for key, source := range c.sources {
		index[source] = append(index[source], key)
	}
	for _, keys := range index {
		sort.Strings(keys)
	}
	return index
}

// MergeCount returns the number of merge calls performed so far.
func (c *Configuration) MergeCount() int {
	return c.count
}

// Record returns a copy of the merge record, in call order.
func (c *Configuration) Record() []MergeEntry {
	record := make([]MergeEntry, len(c.record))
	copy(record, c.record)
	return record
}

// Separator returns the configured key separator.
func (c *Configuration) Separator() string {
	return c.separator
}

// Cache stores a snapshot of the current state under the given name in the
// configured store, overwriting any previous snapshot with that name.
func (c *Configuration) Cache(name string) {
	c.cache.Put(name, c.snapshot())
}

// snapshot captures owned copies of the tree, source map, and merge record.
func (c *Configuration) snapshot() Snapshot {
	sources := make(map[string]any, len(c.sources))
	for key, source := range c.sources {
		sources[key] = source
	}
	return Snapshot{
		Tree:      deepCopyMap(c.data),
		SourceMap: sources,
		Record:    c.Record(),
	}
}

// restore replaces the current state with the snapshot's copies.
func (c *Configuration) restore(snap Snapshot) {
	c.data = deepCopyMap(snap.Tree)
	c.sources = make(map[string]any, len(snap.SourceMap))
	for key, source := range snap.SourceMap {
		c.sources[key] = source
	}
	c.record = make([]MergeEntry, len(snap.Record))
	copy(c.record, snap.Record)
	c.count = len(snap.Record)
}
