package layered

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLockSymbol marks a key immutable once merged.
const DefaultLockSymbol = '#'

// ModifierFunc is a merge-time guard. It receives the action symbol parsed
// from the key (0 when none), the base key, the current value (nil when the
// key is absent), and the incoming value. Returning false cancels the merge
// step for that key: no tree write, no source-map entry, no lock.
type ModifierFunc func(action rune, key string, current, incoming any) bool

// ActionFunc computes the merged leaf value from the current and incoming
// values. The current value is nil when the key is absent. An error is
// surfaced as a symbol error carrying the offending key.
type ActionFunc func(current, incoming any) (any, error)

// SymbolTable maps single non-alphanumeric runes to merge modifiers and
// actions, and reserves one rune as the lock symbol.
//
// Built-in modifiers:
//
//	! — run the step only when the key does not exist yet
//	? — run the step only when the key already exists
//
// Built-in actions:
//
//	= — keep the current value (pin in place; permitted through locks)
//	+ — add the incoming value (list concat, string concat, numeric add)
//	- — remove the incoming value (list elements, substring, numeric sub)
type SymbolTable struct {
	modifiers  map[rune]ModifierFunc
	actions    map[rune]ActionFunc
	lockSymbol rune
}

// NewSymbolTable returns a table populated with the built-in modifiers and
// actions and the default lock symbol.
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{
		modifiers:  make(map[rune]ModifierFunc),
		actions:    make(map[rune]ActionFunc),
		lockSymbol: DefaultLockSymbol,
	}
	t.modifiers['!'] = modifierNotExists
	t.modifiers['?'] = modifierExists
	t.actions['='] = actionPin
	t.actions['+'] = actionAdd
	t.actions['-'] = actionSubtract
	return t
}

// RegisterModifier binds a modifier callback to a symbol.
func (t *SymbolTable) RegisterModifier(symbol rune, fn ModifierFunc) error {
	if err := t.checkSymbol(symbol); err != nil {
		return err
	}
	t.modifiers[symbol] = fn
	return nil
}

// RegisterAction binds an action callback to a symbol.
func (t *SymbolTable) RegisterAction(symbol rune, fn ActionFunc) error {
	if err := t.checkSymbol(symbol); err != nil {
		return err
	}
	t.actions[symbol] = fn
	return nil
}

// LockSymbol returns the reserved lock rune.
func (t *SymbolTable) LockSymbol() rune {
	return t.lockSymbol
}

func (t *SymbolTable) checkSymbol(symbol rune) error {
	if unicode.IsLetter(symbol) || unicode.IsDigit(symbol) {
		return fmt.Errorf("%w: %q is alphanumeric", ErrSymbol, symbol)
	}
	if symbol == t.lockSymbol {
		return fmt.Errorf("%w: %q is the lock symbol", ErrSymbol, symbol)
	}
	if _, exists := t.modifiers[symbol]; exists {
		return fmt.Errorf("%w: %q already registered as modifier", ErrSymbol, symbol)
	}
	if _, exists := t.actions[symbol]; exists {
		return fmt.Errorf("%w: %q already registered as action", ErrSymbol, symbol)
	}
	return nil
}

// symbolSpec is the parsed decomposition of a raw key string. It is derived
// per key during a symbol-aware merge and never persisted.
type symbolSpec struct {
	raw       string
	modifiers []rune
	action    rune // 0 when no action symbol is present
	lock      bool
	base      string
}

// parseKey scans the leading non-alphanumeric runes of a raw key. The lock
// symbol anywhere in that prefix sets the lock flag; of the remaining prefix
// runes at most one may be a registered action, and every other rune must be
// a registered modifier. The remainder is the base key.
func (t *SymbolTable) parseKey(raw string) (symbolSpec, error) {
	spec := symbolSpec{raw: raw}

	rest := raw
	for rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			break
		}
		switch {
		case r == t.lockSymbol:
			spec.lock = true
		case t.actions[r] != nil:
			if spec.action != 0 {
				return spec, fmt.Errorf("%w: multiple actions %q and %q in key %q", ErrSymbol, spec.action, r, raw)
			}
			spec.action = r
		case t.modifiers[r] != nil:
			spec.modifiers = append(spec.modifiers, r)
		default:
			return spec, fmt.Errorf("%w: unregistered symbol %q in key %q", ErrSymbol, r, raw)
		}
		rest = rest[size:]
	}

	if rest == "" {
		return spec, fmt.Errorf("%w: key %q has no name after symbols", ErrInvalidKey, raw)
	}
	spec.base = rest
	return spec, nil
}

// runModifiers attempts each parsed modifier in order, ending immediately
// when any returns false.
func (t *SymbolTable) runModifiers(spec symbolSpec, key string, current, incoming any) bool {
	for _, symbol := range spec.modifiers {
		if !t.modifiers[symbol](spec.action, key, current, incoming) {
			return false
		}
	}
	return true
}

// resolveAction returns the action bound to the spec, or the plain overwrite
// when the key carried no action symbol.
func (t *SymbolTable) resolveAction(spec symbolSpec) ActionFunc {
	if spec.action == 0 {
		return actionOverwrite
	}
	return t.actions[spec.action]
}

func modifierExists(_ rune, _ string, current, _ any) bool {
	return current != nil
}

func modifierNotExists(_ rune, _ string, current, _ any) bool {
	return current == nil
}

func actionOverwrite(_, incoming any) (any, error) {
	return incoming, nil
}

// actionPin keeps the current value in place. Against an absent key the
// incoming value is adopted, so `=` doubles as "set once, then re-lockable".
func actionPin(current, incoming any) (any, error) {
	if current == nil {
		return incoming, nil
	}
	return current, nil
}

func actionAdd(current, incoming any) (any, error) {
	if current == nil {
		return incoming, nil
	}

	switch cur := current.(type) {
	case string:
		if inc, ok := incoming.(string); ok {
			return cur + inc, nil
		}
	case []any:
		if inc, ok := incoming.([]any); ok {
			merged := make([]any, 0, len(cur)+len(inc))
			merged = append(merged, cur...)
			merged = append(merged, inc...)
			return merged, nil
		}
	default:
		if isNumber(current) && isNumber(incoming) {
			return addNumbers(current, incoming, 1)
		}
	}
	return nil, fmt.Errorf("%w: cannot add %T to %T", ErrSymbol, incoming, current)
}

func actionSubtract(current, incoming any) (any, error) {
	if current == nil {
		return incoming, nil
	}

	switch cur := current.(type) {
	case string:
		if inc, ok := incoming.(string); ok {
			return strings.ReplaceAll(cur, inc, ""), nil
		}
	case []any:
		if inc, ok := incoming.([]any); ok {
			kept := make([]any, 0, len(cur))
			for _, elem := range cur {
				if !containsValue(inc, elem) {
					kept = append(kept, elem)
				}
			}
			return kept, nil
		}
	default:
		if isNumber(current) && isNumber(incoming) {
			return addNumbers(current, incoming, -1)
		}
	}
	return nil, fmt.Errorf("%w: cannot subtract %T from %T", ErrSymbol, incoming, current)
}

func containsValue(values []any, target any) bool {
	for _, v := range values {
		if reflect.DeepEqual(v, target) {
			return true
		}
	}
	return false
}

func isNumber(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// addNumbers adds current and sign*incoming. The result stays integral when
// both operands are integral; otherwise it widens to float64. Parsers hand
// us int64 (TOML), float64 (JSON), or int (YAML), so normalizing through
// reflect covers all of them.
func addNumbers(current, incoming any, sign int64) (any, error) {
	cv := reflect.ValueOf(current)
	iv := reflect.ValueOf(incoming)

	if isIntegral(cv) && isIntegral(iv) {
		return intOf(cv) + sign*intOf(iv), nil
	}
	return floatOf(cv) + float64(sign)*floatOf(iv), nil
}

func isIntegral(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func intOf(v reflect.Value) int64 {
	if v.CanUint() {
		return int64(v.Uint())
	}
	return v.Int()
}

func floatOf(v reflect.Value) float64 {
	switch {
	case v.CanFloat():
		return v.Float()
	case v.CanUint():
		return float64(v.Uint())
	default:
		return float64(v.Int())
	}
}
