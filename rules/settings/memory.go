package settings

import (
	"context"
	"sync"

	"rule-orchestrator/rules"
)

var _ Source = (*MemorySource)(nil)

// MemorySource is the default settings backend: a static in-memory map
// populated at startup. Rules without an entry are enabled.
type MemorySource struct {
	mu       sync.RWMutex
	settings map[rules.Kind]Setting
}

// NewMemorySource creates a source seeded with the given settings.
func NewMemorySource(seed map[rules.Kind]Setting) *MemorySource {
	settings := make(map[rules.Kind]Setting, len(seed))
	for kind, setting := range seed {
		settings[kind] = setting
	}
	return &MemorySource{settings: settings}
}

// Setting returns the stored setting for kind, or the enabled default.
func (s *MemorySource) Setting(_ context.Context, kind rules.Kind) (Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	setting, ok := s.settings[kind]
	if !ok {
		return defaultSetting(), nil
	}
	return setting, nil
}

// Set stores a setting for kind. Intended for startup wiring and tests.
func (s *MemorySource) Set(kind rules.Kind, setting Setting) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[kind] = setting
}
