package layered

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Save writes the current merged tree to a file atomically. The format is
// chosen by extension (TOML, JSON, or YAML; TOML for anything else).
func (c *Configuration) Save(path string) error {
	return saveTree(path, c.AsDict())
}

// SaveWithLocks writes the current merged tree with lock markers rendered
// into the key names, so loading the file back through a symbolic merge
// restores the locks.
func (a *AdvancedConfiguration) SaveWithLocks(path string) error {
	return saveTree(path, a.AsDictKeepLocks())
}

func saveTree(path string, tree map[string]any) error {
	data, err := encodeTree(path, tree)
	if err != nil {
		return err
	}
	return atomicWriteFile(path, data)
}

func encodeTree(path string, tree map[string]any) ([]byte, error) {
	switch detectFileFormat(path) {
	case "json":
		data, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("%w: failed to marshal config data to JSON: %w", ErrConfig, err)
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to marshal config data to YAML: %w", ErrConfig, err)
		}
		return data, nil
	default:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(tree); err != nil {
			return nil, fmt.Errorf("%w: failed to marshal config data to TOML: %w", ErrConfig, err)
		}
		return buf.Bytes(), nil
	}
}

// atomicWriteFile writes through a temporary file in the target directory
// and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %q: %w", ErrConfig, dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temporary file: %w", ErrConfig, err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("%w: failed to write temporary file: %w", ErrConfig, err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("%w: failed to sync temporary file: %w", ErrConfig, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("%w: failed to close temporary file: %w", ErrConfig, err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("%w: failed to set permissions: %w", ErrConfig, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("%w: failed to rename temporary file: %w", ErrConfig, err)
	}

	return nil
}
