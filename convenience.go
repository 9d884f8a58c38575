// FILE: lixenwraith/globalconfig/convenience.go
package globalconfig

import (
	"fmt"
	"strings"
)

// Quick builds a frozen Store with a single call
// This is the recommended way to initialize configuration for most applications
func Quick(structDefaults any, envPrefix, configFile string) (*Store, error) {
	return NewBuilder().
		WithDefaults(structDefaults).
		WithEnvPrefix(envPrefix).
		WithFile(configFile).
		Build()
}

// MustQuick is like Quick but panics on error
func MustQuick(structDefaults any, envPrefix, configFile string) *Store {
	store, err := Quick(structDefaults, envPrefix, configFile)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return store
}

// Validate checks that all required paths resolve to a non-null value
func (s *Store) Validate(required ...string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var missing []string
	for _, path := range required {
		if v, ok := s.lookup(path); !ok || v == nil {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required configuration: %s", ErrPathNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// Paths returns the sorted leaf paths of the configuration.
// Sequences and empty mappings are leaves.
func (s *Store) Paths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return sortedPaths(flattenMap(s.data, ""))
}

// Debug returns a formatted string showing the store state and every leaf value
func (s *Store) Debug() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString(fmt.Sprintf("Frozen: %v\n", s.frozen))
	if s.environment != "" {
		b.WriteString(fmt.Sprintf("Environment: %s\n", s.environment))
	}
	b.WriteString("Current values:\n")

	leaves := flattenMap(s.data, "")
	for _, path := range sortedPaths(leaves) {
		value := leaves[path]
		text, err := encodeJSON(value)
		if err != nil {
			text = []byte("<unencodable>")
		}
		b.WriteString(fmt.Sprintf("  %s: %s (%s)\n", path, text, KindOf(value)))
	}

	return b.String()
}

// Clone creates a deep copy of the store, including its frozen state.
// A cyclic configuration cannot be copied and fails with ErrSerialization.
func (s *Store) Clone() (*Store, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	copied, err := deepCopy(s.data)
	if err != nil {
		return nil, fmt.Errorf("failed to clone configuration: %w", err)
	}
	data, _ := copied.(*Map)
	if data == nil {
		data = NewMap()
	}

	return &Store{
		data:        data,
		frozen:      s.frozen,
		environment: s.environment,
		tagName:     s.tagName,
		logger:      s.logger,
	}, nil
}
