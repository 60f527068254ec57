// Package layered merges nested key/value sources into one logical
// configuration tree, tracking which source contributed each value.
//
// Features:
//   - Recursive leaf-by-leaf merging: later sources override earlier ones
//     without discarding untouched branches
//   - Dotted-key lookup into nested trees with typed getters
//   - Per-leaf source attribution and an inverse source index
//   - Symbolic merge directives: per-key modifiers (!, ?), actions
//     (=, +, -), and a lock symbol (#) marking keys immutable
//   - Runtime registration of custom modifiers and actions
//   - Multi-format file loading (TOML, JSON/JSONC, YAML) and environment-
//     driven file lists
//   - Named snapshot caching with an injectable store
//
// Quick start:
//
//	base := map[string]any{"group": map[string]any{"one": 1, "two": 2}}
//	override := map[string]any{"group": map[string]any{"two": 3}}
//
//	cfg, err := layered.FromDicts(
//	    []map[string]any{base, override},
//	    []string{"base", "override"},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	two, _ := cfg.Get("group.two")     // 3
//	one, _ := cfg.Get("group.one")     // 1
//	src, _ := cfg.Source("group.two")  // "override"
//
// Symbolic merging uses an AdvancedConfiguration. Keys in merged data may
// carry a prefix of the form [MODIFIERS][ACTION][LOCK]KEY:
//
//	adv := layered.NewAdvanced()
//	adv.Merge(map[string]any{"list": []any{1, 2}}, "base")
//	adv.Merge(map[string]any{"+list": []any{3}}, "extra")  // [1 2 3]
//	adv.Merge(map[string]any{"#pin": "v1"}, "release")     // locked
//
// Concurrency:
// A Configuration is not internally synchronized. Reads may run
// concurrently with each other but not with a mutation; callers needing
// concurrent mutation must serialize externally.
package layered
