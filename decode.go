package layered

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Scan decodes the configuration data under basePath into the target
// struct or map. An empty basePath decodes the whole tree. The target must
// be a non-nil pointer; fields map through "toml" struct tags.
func (c *Configuration) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: target of Scan must be a non-nil pointer, got %T", ErrConfig, target)
	}

	var sectionData any = c.AsDict()

	if basePath = strings.TrimSuffix(basePath, c.separator); basePath != "" {
		segments, err := splitKey(basePath, c.separator)
		if err != nil {
			return err
		}
		value, err := resolvePath(c.data, segments, c.separator)
		if err != nil {
			// An absent section decodes as empty rather than failing, so
			// optional config blocks scan into zero-valued structs.
			value = map[string]any{}
		}
		sectionData = deepCopyValue(value)
	}

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: key %q does not refer to a scannable section (map), but to type %T", ErrConfig, basePath, sectionData)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create mapstructure decoder: %w", ErrConfig, err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("%w: failed to scan section %q into %T: %w", ErrConfig, basePath, target, err)
	}

	return nil
}
