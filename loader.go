package layered

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileLoader parses a configuration file into a nested mapping.
type FileLoader interface {
	LoadFile(path string) (map[string]any, error)
}

// EnvReader reads an ordered list of file paths from an environment
// variable. The first entry is lowest precedence.
type EnvReader interface {
	ReadPathList(varName string) ([]string, error)
}

// StdFileLoader loads TOML, JSON, JSONC, and YAML files. The format is
// chosen by extension, falling back to content detection for unknown
// extensions.
type StdFileLoader struct{}

// LoadFile reads and parses the file at path into a nested map. Failures
// wrap ErrConfig together with the underlying I/O or parse error.
func (StdFileLoader) LoadFile(path string) (map[string]any, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file %q: %w", ErrConfig, path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(fileData)
		if format == "" {
			return nil, fmt.Errorf("%w: unable to determine config format for file %q", ErrConfig, path)
		}
	}

	data := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(fileData, &data); err != nil {
			return nil, fmt.Errorf("%w: failed to parse TOML config file %q: %w", ErrConfig, path, err)
		}
	case "json":
		// jsonc.ToJSON is a no-op on plain JSON, so comments and trailing
		// commas are tolerated everywhere.
		if err := json.Unmarshal(jsonc.ToJSON(fileData), &data); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON config file %q: %w", ErrConfig, path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(fileData, &data); err != nil {
			return nil, fmt.Errorf("%w: failed to parse YAML config file %q: %w", ErrConfig, path, err)
		}
	}

	return normalizeTree(data), nil
}

// detectFileFormat determines format from the file extension.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json", ".jsonc":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect the format by parsing.
// JSON first (strict), then YAML (a superset of JSON), TOML last.
func detectFormatFromContent(data []byte) string {
	var jsonTest any
	if err := json.Unmarshal(jsonc.ToJSON(data), &jsonTest); err == nil {
		return "json"
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	return ""
}

// normalizeTree rewrites parser-specific map and slice types into the
// map[string]any / []any shapes the merge engine operates on. YAML in
// particular produces map[any]any nodes for some documents.
func normalizeTree(data map[string]any) map[string]any {
	normalized := make(map[string]any, len(data))
	for key, value := range data {
		normalized[key] = normalizeValue(value)
	}
	return normalized
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeTree(v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for key, elem := range v {
			m[fmt.Sprintf("%v", key)] = normalizeValue(elem)
		}
		return m
	case []any:
		s := make([]any, len(v))
		for i, elem := range v {
			s[i] = normalizeValue(elem)
		}
		return s
	case []map[string]any:
		s := make([]any, len(v))
		for i, elem := range v {
			s[i] = normalizeTree(elem)
		}
		return s
	default:
		return v
	}
}

// OSEnvReader reads path lists from the process environment, split on the
// OS path-list separator.
type OSEnvReader struct{}

// ReadPathList returns the ordered paths stored in the named variable. A
// missing or empty variable is an error: the caller asked for layered
// files that do not exist.
func (OSEnvReader) ReadPathList(varName string) ([]string, error) {
	value, ok := os.LookupEnv(varName)
	if !ok || value == "" {
		return nil, fmt.Errorf("%w: environment variable %q is not set", ErrConfig, varName)
	}

	var paths []string
	for _, path := range strings.Split(value, string(os.PathListSeparator)) {
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}
