package layered

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typedTestConfig(t *testing.T) *Configuration {
	t.Helper()
	cfg := New()
	require.NoError(t, cfg.Merge(map[string]any{
		"str":      "hello",
		"int":      42,
		"int64":    int64(42),
		"float":    3.5,
		"bool":     true,
		"numStr":   "123",
		"floatStr": "1.5",
		"boolStr":  "true",
		"nilVal":   nil,
		"tree":     map[string]any{"k": "v"},
	}, ""))
	return cfg
}

func TestString(t *testing.T) {
	cfg := typedTestConfig(t)

	tests := []struct {
		key      string
		expected string
	}{
		{"str", "hello"},
		{"int", "42"},
		{"float", "3.5"},
		{"bool", "true"},
		{"nilVal", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			value, err := cfg.String(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("Unconvertible", func(t *testing.T) {
		_, err := cfg.String("tree")
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("MissingKey", func(t *testing.T) {
		_, err := cfg.String("absent")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestInt64(t *testing.T) {
	cfg := typedTestConfig(t)

	tests := []struct {
		key      string
		expected int64
	}{
		{"int", 42},
		{"int64", 42},
		{"float", 3},
		{"numStr", 123},
		{"floatStr", 1},
		{"bool", 1},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			value, err := cfg.Int64(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("NilValue", func(t *testing.T) {
		_, err := cfg.Int64("nilVal")
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("UnparsableString", func(t *testing.T) {
		_, err := cfg.Int64("str")
		assert.ErrorIs(t, err, ErrConfig)
	})
}

func TestBool(t *testing.T) {
	cfg := typedTestConfig(t)

	tests := []struct {
		key      string
		expected bool
	}{
		{"bool", true},
		{"boolStr", true},
		{"int", true},
		{"float", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			value, err := cfg.Bool(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("ZeroIsFalse", func(t *testing.T) {
		require.NoError(t, cfg.Set("zero", 0))
		value, err := cfg.Bool("zero")
		require.NoError(t, err)
		assert.False(t, value)
	})

	t.Run("UnparsableString", func(t *testing.T) {
		_, err := cfg.Bool("str")
		assert.ErrorIs(t, err, ErrConfig)
	})
}

func TestFloat64(t *testing.T) {
	cfg := typedTestConfig(t)

	tests := []struct {
		key      string
		expected float64
	}{
		{"float", 3.5},
		{"int", 42},
		{"floatStr", 1.5},
		{"bool", 1},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			value, err := cfg.Float64(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("NilValue", func(t *testing.T) {
		_, err := cfg.Float64("nilVal")
		assert.ErrorIs(t, err, ErrConfig)
	})
}
