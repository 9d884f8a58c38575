// FILE: lixenwraith/globalconfig/config.go
package globalconfig

import (
	"sync"

	"github.com/rs/zerolog"
)

// Store holds the process-wide configuration.
// Construct one at startup and hand it to consumers, directly or through
// ContextWithStore.
type Store struct {
	data        *Map   // Current configuration, never nil
	frozen      bool   // Set once a Set call ran with Freeze(true)
	environment string // Optional top-level key consulted first by reads
	tagName     string // Struct tag used by Scan
	logger      zerolog.Logger
	mutex       sync.RWMutex
}

// StoreOption configures a Store at construction.
type StoreOption func(*Store)

// WithLogger sets the logger used for store events.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithTagName sets the struct tag Scan decodes with. Default: "toml".
func WithTagName(tagName string) StoreOption {
	return func(s *Store) {
		if tagName != "" {
			s.tagName = tagName
		}
	}
}

// WithEnvironment sets the initial environment overlay. See SetEnvironment.
func WithEnvironment(name string) StoreOption {
	return func(s *Store) { s.environment = name }
}

// New creates an empty, unfrozen Store.
func New(opts ...StoreOption) *Store {
	s := &Store{
		data:    NewMap(),
		tagName: "toml",
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set installs configuration, or extends the current one with Assign(true).
// The first call always succeeds; later calls succeed only while every earlier
// call passed Freeze(false). A frozen store returns ErrAlreadySet whatever the
// options of the rejected call. A nil configuration is treated as empty.
func (s *Store) Set(configuration *Map, opts ...Option) error {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return s.set(configuration, func() (Options, error) { return options, nil })
}

// SetWithOptions is Set driven by an option bag such as {"freeze": false}.
// The bag is checked by ValidateOptions before anything is modified.
func (s *Store) SetWithOptions(configuration *Map, raw map[string]any) error {
	return s.set(configuration, func() (Options, error) { return ValidateOptions(raw) })
}

// set runs the frozen check before options are resolved, so a frozen store
// reports ErrAlreadySet even for an invalid option bag.
func (s *Store) set(configuration *Map, resolveOptions func() (Options, error)) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.frozen {
		s.logger.Warn().Msg("rejected set on frozen configuration")
		return ErrAlreadySet
	}

	options, err := resolveOptions()
	if err != nil {
		s.logger.Warn().Err(err).Msg("rejected set options")
		return err
	}

	if configuration == nil {
		configuration = NewMap()
	}

	if options.Assign {
		s.data = s.data.Merge(configuration)
	} else {
		s.data = configuration
	}
	s.frozen = options.Freeze

	s.logger.Debug().
		Int("keys", s.data.Len()).
		Bool("assign", options.Assign).
		Bool("freeze", options.Freeze).
		Msg("configuration set")

	return nil
}

// Get resolves a dot-separated key and returns its value, or fallback when the
// key does not resolve. An empty key returns the whole configuration.
// Returned mappings and sequences are the stored values, not copies.
func (s *Store) Get(key string, fallback any) any {
	if v, ok := s.Lookup(key); ok {
		return v
	}
	return fallback
}

// Lookup resolves a dot-separated key and reports whether it was found.
// With an environment set, "<environment>.<key>" is tried before "<key>".
func (s *Store) Lookup(key string) (any, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.lookup(key)
}

// lookup requires the read lock.
func (s *Store) lookup(key string) (any, bool) {
	if key != "" && s.environment != "" {
		if v, ok := resolvePath(s.data, s.environment+"."+key); ok {
			return v, true
		}
	}
	return resolvePath(s.data, key)
}

// Serialize renders the configuration as compact JSON with keys in insertion order.
// Cyclic or unencodable content fails with ErrSerialization.
func (s *Store) Serialize() (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := encodeJSON(s.data)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetEnvironment selects the top-level key whose contents shadow root keys on reads.
// An empty name disables the overlay. Allowed whether or not the store is frozen.
func (s *Store) SetEnvironment(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.environment = name
}

// Environment returns the current environment overlay name.
func (s *Store) Environment() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.environment
}

// IsFrozen reports whether further Set calls will fail.
func (s *Store) IsFrozen() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.frozen
}

// Reset restores the empty, unfrozen state.
// It exists to isolate tests from one another; application code should not call it.
func (s *Store) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data = NewMap()
	s.frozen = false
	s.environment = ""
}
