package layered

import (
	"fmt"
	"reflect"
	"strconv"
)

// String retrieves a string value at the key, converting common scalar
// types when the stored value isn't already a string.
func (c *Configuration) String(key string) (string, error) {
	val, err := c.Get(key)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}

	if strVal, ok := val.(string); ok {
		return strVal, nil
	}

	switch v := val.(type) {
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("%w: cannot convert type %T to string for key %s", ErrConfig, val, key)
	}
}

// Int64 retrieves an int64 value at the key, converting from numeric types,
// parsable strings, and booleans.
func (c *Configuration) Int64(key string) (int64, error) {
	val, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return 0, fmt.Errorf("%w: value at %s is nil, cannot convert to int64", ErrConfig, key)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > uint64(^uint64(0)>>1) {
			return 0, fmt.Errorf("%w: cannot convert %d to int64 for key %s: overflow", ErrConfig, u, key)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(v.Float()), nil
	case reflect.String:
		s := v.String()
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), nil
		}
		return 0, fmt.Errorf("%w: cannot convert string %q to int64 for key %s", ErrConfig, s, key)
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("%w: cannot convert type %T to int64 for key %s", ErrConfig, val, key)
}

// Bool retrieves a boolean value at the key, converting from numeric types
// (0=false, non-zero=true) and parsable strings.
func (c *Configuration) Bool(key string) (bool, error) {
	val, err := c.Get(key)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, fmt.Errorf("%w: value at %s is nil, cannot convert to bool", ErrConfig, key)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		s := v.String()
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		}
		return false, fmt.Errorf("%w: cannot convert string %q to bool for key %s", ErrConfig, s, key)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0, nil
	}

	return false, fmt.Errorf("%w: cannot convert type %T to bool for key %s", ErrConfig, val, key)
}

// Float64 retrieves a float64 value at the key, converting from numeric
// types, parsable strings, and booleans.
func (c *Configuration) Float64(key string) (float64, error) {
	val, err := c.Get(key)
	if err != nil {
		return 0.0, err
	}
	if val == nil {
		return 0.0, fmt.Errorf("%w: value at %s is nil, cannot convert to float64", ErrConfig, key)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		s := v.String()
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
		return 0.0, fmt.Errorf("%w: cannot convert string %q to float64 for key %s", ErrConfig, s, key)
	case reflect.Bool:
		if v.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	}

	return 0.0, fmt.Errorf("%w: cannot convert type %T to float64 for key %s", ErrConfig, val, key)
}
