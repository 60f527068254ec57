package layered

import (
	"errors"
	"fmt"
)

// ErrConfig is the base error for everything this package reports.
// Every other sentinel wraps it, so errors.Is(err, ErrConfig) matches
// any failure raised by the configuration engine or its loaders.
var ErrConfig = errors.New("layered: configuration error")

var (
	// ErrInvalidKey reports a malformed key string, such as an empty segment
	// produced by leading, trailing, or doubled separators.
	ErrInvalidKey = fmt.Errorf("%w: invalid key", ErrConfig)

	// ErrKeyNotFound reports a lookup of an absent key with no default.
	ErrKeyNotFound = fmt.Errorf("%w: key not found", ErrConfig)

	// ErrSymbol reports an unregistered or ambiguous merge symbol, or an
	// action applied to incompatible value types.
	ErrSymbol = fmt.Errorf("%w: symbol error", ErrConfig)

	// ErrLocked reports a write attempted against a locked key.
	ErrLocked = fmt.Errorf("%w: key is locked", ErrConfig)

	// ErrCacheMiss reports a cache lookup for a name with no stored snapshot.
	ErrCacheMiss = fmt.Errorf("%w: no cached snapshot", ErrConfig)
)
