package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "docintel.toml"

var _ driven.ConfigStore = (*ConfigStore)(nil)

// Format is an on-disk configuration syntax.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension. Anything other than
// .yaml or .yml is TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// ConfigStore persists settings to a TOML or YAML file as nested tables.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	format   Format
	data     map[string]any
}

// NewConfigStore creates a config store backed by the file at path.
// If path is empty, DefaultPath is used. A missing file starts empty.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		path = DefaultPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	s := &ConfigStore{
		filePath: path,
		format:   FormatFor(path),
		data:     make(map[string]any),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString returns "" for a missing or non-string value.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// save writes the nested document back to disk. Callers hold mu.
func (s *ConfigStore) save() error {
	nested, err := unflattenMap(s.data)
	if err != nil {
		return err
	}

	var data []byte
	switch s.format {
	case FormatYAML:
		data, err = yaml.Marshal(nested)
	default:
		data, err = toml.Marshal(nested)
	}
	if err != nil {
		return fmt.Errorf("encoding %s config: %w", s.format, err)
	}

	// API keys may live here.
	return os.WriteFile(s.filePath, data, 0o600)
}

// load reads the file into the flat key map. A missing file is empty.
func (s *ConfigStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	switch s.format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = toml.Unmarshal(data, &loaded)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}

	s.data = flattenMap(loaded, "")
	return nil
}

// Keys returns every stored key in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// unflattenMap reverses flattenMap. A key that is both a value and a
// table prefix ("a" and "a.b") cannot be represented and is an error.
func unflattenMap(flat map[string]any) (map[string]any, error) {
	result := make(map[string]any)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			next, ok := child.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("config key %q conflicts with value at %q", key, part)
			}
			node = next
		}
		leaf := parts[len(parts)-1]
		if _, ok := node[leaf].(map[string]any); ok {
			return nil, fmt.Errorf("config key %q conflicts with a table of the same name", key)
		}
		node[leaf] = flat[key]
	}

	return result, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
