package layered

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	table := NewSymbolTable()

	tests := []struct {
		name      string
		raw       string
		modifiers []rune
		action    rune
		lock      bool
		base      string
		wantErr   error
	}{
		{name: "Plain", raw: "port", base: "port"},
		{name: "Action", raw: "+list", action: '+', base: "list"},
		{name: "Lock", raw: "#pin", lock: true, base: "pin"},
		{name: "Modifier", raw: "!key", modifiers: []rune{'!'}, base: "key"},
		{name: "ModifierActionLock", raw: "?+#counter", modifiers: []rune{'?'}, action: '+', lock: true, base: "counter"},
		{name: "NotExistsAddLock", raw: "!+#counter", modifiers: []rune{'!'}, action: '+', lock: true, base: "counter"},
		{name: "LockBeforeAction", raw: "#=version", action: '=', lock: true, base: "version"},
		{name: "MultipleActions", raw: "+-key", wantErr: ErrSymbol},
		{name: "UnregisteredSymbol", raw: "%key", wantErr: ErrSymbol},
		{name: "NoNameAfterSymbols", raw: "+#", wantErr: ErrInvalidKey},
		{name: "EmptyKey", raw: "", wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := table.parseKey(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, spec.raw)
			assert.Equal(t, tt.modifiers, spec.modifiers)
			assert.Equal(t, tt.action, spec.action)
			assert.Equal(t, tt.lock, spec.lock)
			assert.Equal(t, tt.base, spec.base)
		})
	}
}

func TestRegisterSymbolValidation(t *testing.T) {
	passthrough := func(current, incoming any) (any, error) { return incoming, nil }

	tests := []struct {
		name   string
		symbol rune
	}{
		{"Letter", 'x'},
		{"Digit", '7'},
		{"LockSymbol", '#'},
		{"ExistingAction", '+'},
		{"ExistingModifier", '!'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewSymbolTable()
			assert.ErrorIs(t, table.RegisterAction(tt.symbol, passthrough), ErrSymbol)
		})
	}

	t.Run("FreshSymbol", func(t *testing.T) {
		table := NewSymbolTable()
		require.NoError(t, table.RegisterAction('~', passthrough))
		// Second registration of the same rune is rejected.
		assert.ErrorIs(t, table.RegisterModifier('~', func(rune, string, any, any) bool { return true }), ErrSymbol)
	})
}

func TestActionAdd(t *testing.T) {
	tests := []struct {
		name     string
		current  any
		incoming any
		expected any
		wantErr  bool
	}{
		{"Strings", "foo", "bar", "foobar", false},
		{"Lists", []any{1, 2}, []any{3}, []any{1, 2, 3}, false},
		{"Ints", 1, 2, int64(3), false},
		{"IntAndFloat", 1, 0.5, 1.5, false},
		{"AbsentAdoptsIncoming", nil, []any{1}, []any{1}, false},
		{"StringPlusInt", "foo", 1, nil, true},
		{"ListPlusString", []any{1}, "x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := actionAdd(tt.current, tt.incoming)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSymbol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestActionSubtract(t *testing.T) {
	tests := []struct {
		name     string
		current  any
		incoming any
		expected any
		wantErr  bool
	}{
		{"SubstringRemoved", "hello world", "world", "hello ", false},
		{"AllOccurrencesRemoved", "aXbXc", "X", "abc", false},
		{"ListElements", []any{1, 2, 3, 2}, []any{2}, []any{1, 3}, false},
		{"Numbers", 10, 4, int64(6), false},
		{"Floats", 1.5, 0.5, 1.0, false},
		{"AbsentAdoptsIncoming", nil, 3, 3, false},
		{"BoolMismatch", true, 1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := actionSubtract(tt.current, tt.incoming)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSymbol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestActionPin(t *testing.T) {
	t.Run("KeepsCurrent", func(t *testing.T) {
		result, err := actionPin("old", "new")
		require.NoError(t, err)
		assert.Equal(t, "old", result)
	})

	t.Run("AdoptsIncomingWhenAbsent", func(t *testing.T) {
		result, err := actionPin(nil, "new")
		require.NoError(t, err)
		assert.Equal(t, "new", result)
	})
}
