package memory

import (
	"slices"
	"sync"

	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Nothing survives the process.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns an empty store, optionally seeded with values.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, m := range seed {
		for k, v := range m {
			s.values[k] = v
		}
	}
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *ConfigStore) Path() string {
	return ":memory:"
}
