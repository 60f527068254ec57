package layered

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSplitKey(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		expected    []string
		expectError bool
	}{
		{"SingleSegment", "port", []string{"port"}, false},
		{"NestedKey", "server.host.name", []string{"server", "host", "name"}, false},
		{"LeadingSeparator", ".server", nil, true},
		{"TrailingSeparator", "server.", nil, true},
		{"DoubleSeparator", "server..port", nil, true},
		{"EmptyKey", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := splitKey(tt.key, ".")
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidKey)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, segments)
			}
		})
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		segments := rapid.SliceOfN(rapid.StringMatching(`[a-z][a-z0-9_-]{0,7}`), 1, 6).Draw(t, "segments")
		key := joinKey(segments, ".")

		split, err := splitKey(key, ".")
		if err != nil {
			t.Fatalf("split of joined key %q failed: %v", key, err)
		}
		if joinKey(split, ".") != key {
			t.Fatalf("round trip changed key: %q != %q", joinKey(split, "."), key)
		}
	})
}

func TestResolvePath(t *testing.T) {
	tree := map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"port": 8080,
		},
		"debug": true,
	}

	t.Run("Leaf", func(t *testing.T) {
		value, err := resolvePath(tree, []string{"server", "port"}, ".")
		require.NoError(t, err)
		assert.Equal(t, 8080, value)
	})

	t.Run("Subtree", func(t *testing.T) {
		value, err := resolvePath(tree, []string{"server"}, ".")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"host": "localhost", "port": 8080}, value)
	})

	t.Run("MissingIntermediate", func(t *testing.T) {
		_, err := resolvePath(tree, []string{"client", "port"}, ".")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("LeafWithSegmentsRemaining", func(t *testing.T) {
		_, err := resolvePath(tree, []string{"debug", "level"}, ".")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestFlattenMap(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": 2},
		},
		"e": "leaf",
	}

	flat := flattenMap(nested, "", ".")
	assert.Equal(t, map[string]any{
		"a.b":   1,
		"a.c.d": 2,
		"e":     "leaf",
	}, flat)
}

func TestSetNestedValue(t *testing.T) {
	t.Run("CreatesIntermediates", func(t *testing.T) {
		tree := make(map[string]any)
		setNestedValue(tree, []string{"a", "b", "c"}, 1)
		assert.Equal(t, map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}, tree)
	})

	t.Run("ReplacesNonMapIntermediate", func(t *testing.T) {
		tree := map[string]any{"a": "leaf"}
		setNestedValue(tree, []string{"a", "b"}, 1)
		assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, tree)
	})
}

func TestDeepCopyValue(t *testing.T) {
	original := map[string]any{
		"list": []any{1, 2},
		"tree": map[string]any{"k": "v"},
	}

	copied := deepCopyMap(original)
	copied["list"].([]any)[0] = 99
	copied["tree"].(map[string]any)["k"] = "changed"

	assert.Equal(t, 1, original["list"].([]any)[0])
	assert.Equal(t, "v", original["tree"].(map[string]any)["k"])
}
