// FILE: lixenwraith/globalconfig/builder.go
package globalconfig

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// ValidatorFunc defines the signature for a function that can validate a Store.
// It receives the fully loaded *Store and should return an error if validation fails.
type ValidatorFunc func(s *Store) error

// Builder provides a fluent interface for assembling a configuration and
// installing it into a new Store
type Builder struct {
	opts        LoadOptions
	setOpts     []Option
	defaults    any
	tagName     string
	environment string
	logger      zerolog.Logger
	file        string
	args        []string
	err         error
	validators  []ValidatorFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultLoadOptions(),
		tagName:    "toml",
		logger:     zerolog.Nop(),
		args:       os.Args[1:],
		validators: make([]ValidatorFunc, 0),
	}
}

// WithDefaults sets the struct (or *Map) containing default values
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithTagName sets the struct tag used for defaults conversion and Scan
func (b *Builder) WithTagName(tagName string) *Builder {
	switch tagName {
	case "toml", "json", "yaml", "mapstructure":
		b.tagName = tagName
	default:
		b.err = fmt.Errorf("unsupported tag name %q", tagName)
	}
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFormat forces the configuration file format instead of detecting it
func (b *Builder) WithFormat(format Format) *Builder {
	switch format {
	case "", FormatJSON, FormatTOML, FormatYAML:
		b.opts.Format = format
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return b
}

// WithMaxFileSize rejects configuration files larger than size bytes
func (b *Builder) WithMaxFileSize(size int64) *Builder {
	b.opts.MaxFileSize = size
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithSources sets the precedence order for configuration sources
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.opts.Sources = sources
	return b
}

// WithEnvTransform sets a custom environment variable transformer
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.opts.EnvTransform = fn
	return b
}

// WithEnvWhitelist limits which paths are checked for env vars
func (b *Builder) WithEnvWhitelist(paths ...string) *Builder {
	if b.opts.EnvWhitelist == nil {
		b.opts.EnvWhitelist = make(map[string]bool)
	}
	for _, path := range paths {
		b.opts.EnvWhitelist[path] = true
	}
	return b
}

// WithEnvironment sets the environment overlay of the built store
func (b *Builder) WithEnvironment(name string) *Builder {
	b.environment = name
	return b
}

// WithLogger sets the logger used by the builder and the built store
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithSetOptions sets the options of the Set call that installs the configuration.
// By default the built store is frozen.
func (b *Builder) WithSetOptions(opts ...Option) *Builder {
	b.setOpts = append(b.setOpts, opts...)
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build loads all sources and returns a Store holding the result.
// ErrConfigNotFound is returned alongside a usable Store.
func (b *Builder) Build() (*Store, error) {
	if b.err != nil {
		return nil, b.err
	}

	var defaults *Map
	switch d := b.defaults.(type) {
	case nil:
	case *Map:
		defaults = d
	default:
		converted, err := FromStruct(d, b.tagName)
		if err != nil {
			return nil, fmt.Errorf("failed to convert defaults: %w", err)
		}
		defaults = converted
	}

	configuration, loadErr := Load(defaults, b.file, b.args, b.opts)
	if loadErr != nil && !errors.Is(loadErr, ErrConfigNotFound) {
		// Return on fatal load errors. ErrConfigNotFound is not fatal.
		return nil, loadErr
	}

	b.logger.Debug().
		Str("file", b.file).
		Bool("file_found", b.file != "" && !errors.Is(loadErr, ErrConfigNotFound)).
		Int("keys", configuration.Len()).
		Msg("configuration loaded")

	store := New(WithLogger(b.logger), WithTagName(b.tagName), WithEnvironment(b.environment))
	if err := store.Set(configuration, b.setOpts...); err != nil {
		return nil, err
	}

	// Run validators
	for _, validator := range b.validators {
		if err := validator(store); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	// ErrConfigNotFound or nil
	return store, loadErr
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Store {
	store, err := b.Build()
	if err != nil {
		// Ignore ErrConfigNotFound as it is not a fatal error for MustBuild.
		// The application can proceed with defaults/env vars.
		if !errors.Is(err, ErrConfigNotFound) {
			panic(fmt.Sprintf("config build failed: %v", err))
		}
	}
	return store
}

// BuildAndScan builds the store and decodes the whole configuration into target
func (b *Builder) BuildAndScan(target any) (*Store, error) {
	store, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}

	if scanErr := store.Scan("", target); scanErr != nil {
		return nil, fmt.Errorf("failed to scan final config into target: %w", scanErr)
	}

	// ErrConfigNotFound or nil
	return store, err
}
