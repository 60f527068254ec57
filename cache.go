package layered

// Snapshot is a cached copy of a Configuration's state: the merged tree,
// the per-leaf source map, and the merge record.
type Snapshot struct {
	Tree      map[string]any
	SourceMap map[string]any
	Record    []MergeEntry
}

// CacheStore stores named snapshots. Stores are injected through Options;
// the package default is shared process-wide, so tests should inject their
// own store or Clear the default in teardown.
type CacheStore interface {
	Put(name string, snap Snapshot)
	Get(name string) (Snapshot, bool)
	Clear()
}

// MemoryCacheStore is an in-memory CacheStore. Snapshots never expire;
// Put overwrites any previous snapshot with the same name.
type MemoryCacheStore struct {
	snapshots map[string]Snapshot
}

// NewMemoryCacheStore returns an empty in-memory store.
func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{snapshots: make(map[string]Snapshot)}
}

// Put stores the snapshot under the given name.
func (s *MemoryCacheStore) Put(name string, snap Snapshot) {
	s.snapshots[name] = snap
}

// Get returns the snapshot stored under the name, if any.
func (s *MemoryCacheStore) Get(name string) (Snapshot, bool) {
	snap, ok := s.snapshots[name]
	return snap, ok
}

// Clear drops every stored snapshot.
func (s *MemoryCacheStore) Clear() {
	s.snapshots = make(map[string]Snapshot)
}

// defaultCacheStore backs DefaultOptions. Process-wide by design, matching
// cache semantics where any Configuration can restore a snapshot by name.
var defaultCacheStore = NewMemoryCacheStore()

// DefaultCacheStore returns the process-wide snapshot store.
func DefaultCacheStore() *MemoryCacheStore {
	return defaultCacheStore
}
