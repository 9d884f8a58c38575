// FILE: lixenwraith/globalconfig/loader.go
package globalconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Source represents a configuration source, used to define load precedence
type Source string

const (
	// SourceDefault represents default values supplied to the loader
	SourceDefault Source = "default"
	// SourceFile represents values loaded from a configuration file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables
	SourceEnv Source = "env"
	// SourceCLI represents values loaded from command-line arguments
	SourceCLI Source = "cli"
)

// MaxValueSize bounds a single environment or command-line value.
const MaxValueSize = 1 << 20

// EnvTransformFunc converts a configuration path to an environment variable name
type EnvTransformFunc func(path string) string

// LoadOptions configures how configuration is assembled from multiple sources
type LoadOptions struct {
	// Sources defines the precedence order (first = highest priority)
	// Default: [SourceCLI, SourceEnv, SourceFile, SourceDefault]
	Sources []Source

	// EnvPrefix is prepended to environment variable names
	// Example: "MYAPP_" transforms "server.port" to "MYAPP_SERVER_PORT"
	EnvPrefix string

	// EnvTransform customizes how paths map to environment variables
	// If nil, uses default transformation (dots to underscores, uppercase)
	EnvTransform EnvTransformFunc

	// EnvWhitelist limits which paths are checked for env vars (nil = all leaf paths).
	// Whitelisted paths are checked even when no other source defines them.
	EnvWhitelist map[string]bool

	// Format forces the file format; empty detects it from extension, then content
	Format Format

	// MaxFileSize rejects larger configuration files (0 = unlimited)
	MaxFileSize int64
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources: []Source{SourceCLI, SourceEnv, SourceFile, SourceDefault},
	}
}

// Load assembles a configuration from defaults, a file, environment variables
// and command-line arguments, layered by opts.Sources. Later layers override
// earlier ones per leaf path. A missing file is reported as ErrConfigNotFound
// alongside the assembled configuration; other file errors and cyclic
// defaults are fatal.
func Load(defaults *Map, filePath string, args []string, opts LoadOptions) (*Map, error) {
	result := NewMap()
	var loadErrors []error

	// Process each source according to precedence (in reverse order for proper layering)
	for i := len(opts.Sources) - 1; i >= 0; i-- {
		switch opts.Sources[i] {
		case SourceDefault:
			if defaults != nil {
				if err := overlay(result, defaults); err != nil {
					return nil, fmt.Errorf("invalid defaults: %w", err)
				}
			}

		case SourceFile:
			if filePath == "" {
				continue
			}
			fileConfig, err := LoadFile(filePath, opts.Format, opts.MaxFileSize)
			if err != nil {
				if errors.Is(err, ErrConfigNotFound) {
					loadErrors = append(loadErrors, err)
					continue
				}
				return nil, err // Fatal error
			}
			if err := overlay(result, fileConfig); err != nil {
				return nil, err
			}

		case SourceEnv:
			if err := ApplyEnv(result, opts); err != nil {
				loadErrors = append(loadErrors, err)
			}

		case SourceCLI:
			if len(args) > 0 {
				if err := ApplyCLI(result, args); err != nil {
					loadErrors = append(loadErrors, err)
				}
			}
		}
	}

	return result, errors.Join(loadErrors...)
}

// overlay copies src into dst. Mappings present on both sides are combined
// key by key; any other value in src replaces the one in dst.
func overlay(dst, src *Map) error {
	var err error
	src.Range(func(key string, value any) bool {
		srcMap, srcIsMap := value.(*Map)
		existing, _ := dst.Get(key)
		dstMap, dstIsMap := existing.(*Map)

		if srcIsMap && srcMap != nil && dstIsMap && dstMap != nil {
			err = overlay(dstMap, srcMap)
			return err == nil
		}

		var copied any
		if copied, err = deepCopy(value); err != nil {
			return false
		}
		dst.Set(key, copied)
		return true
	})
	return err
}

// LoadFile reads and parses a configuration file into a Map.
// An empty format is detected from the file extension, then from the content.
func LoadFile(path string, format Format, maxSize int64) (*Map, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("config path '%s' is a directory", path)
	}

	if maxSize > 0 && fileInfo.Size() > maxSize {
		return nil, fmt.Errorf("config file '%s' exceeds maximum size %d bytes", path, maxSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	// Use LimitedReader for additional safety
	var reader io.Reader = file
	if maxSize > 0 {
		reader = io.LimitReader(file, maxSize)
	}

	fileData, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if format == "" {
		// Try extension first
		format = Format(detectFileFormat(path))
		if format == "" {
			// Fall back to content detection
			format = Format(detectFormatFromContent(fileData))
		}
		if format == "" {
			return nil, fmt.Errorf("%w: unable to determine format of '%s'", ErrUnsupportedFormat, path)
		}
	}

	m, err := Parse(fileData, format)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return m, nil
}

// ApplyEnv overrides leaf paths of m with matching environment variables.
// Values are parsed into bool, int64 or float64 where possible.
func ApplyEnv(m *Map, opts LoadOptions) error {
	transform := opts.EnvTransform
	if transform == nil {
		transform = defaultEnvTransform(opts.EnvPrefix)
	}

	candidates := flattenMap(m, "")
	for path := range opts.EnvWhitelist {
		if _, exists := candidates[path]; !exists {
			candidates[path] = nil
		}
	}

	for _, path := range sortedPaths(candidates) {
		if opts.EnvWhitelist != nil && !opts.EnvWhitelist[path] {
			continue
		}

		envVar := transform(path)
		if envVar == "" {
			continue
		}
		value, exists := os.LookupEnv(envVar)
		if !exists {
			continue
		}
		if len(value) > MaxValueSize {
			return fmt.Errorf("environment variable %s exceeds maximum size %d bytes", envVar, MaxValueSize)
		}
		setNestedValue(m, path, parseValue(value))
	}

	return nil
}

// ApplyCLI overrides paths of m from "--key.sub=value", "--key.sub value" and
// "--flag" arguments. Arguments not starting with "--" are skipped.
func ApplyCLI(m *Map, args []string) error {
	overrides, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}

	for _, o := range overrides {
		setNestedValue(m, o.path, o.value)
	}
	return nil
}

// defaultEnvTransform creates the default environment variable transformer
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(path string) string {
		env := strings.ReplaceAll(path, ".", "_")
		env = strings.ToUpper(env)
		if prefix != "" {
			env = prefix + env
		}
		return env
	}
}

// parseValue attempts to parse a string into appropriate types
func parseValue(s string) any {
	// Try boolean
	if s == "true" {
		return true
	}
	if s == "false" {
		return false
	}

	// Try int64
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}

	// Try float64
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}

	// Remove quotes if present
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}

	// Return as string
	return s
}

// cliOverride is a single parsed command-line assignment.
type cliOverride struct {
	path  string
	value any
}

// parseArgs processes command-line arguments into path assignments in argument order.
func parseArgs(args []string) ([]cliOverride, error) {
	var result []cliOverride
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// Skip "--" argument if used as a separator
			i++
			continue
		}

		var keyPath string
		var valueStr string

		// Check for "--key=value" format
		if strings.Contains(argContent, "=") {
			parts := strings.SplitN(argContent, "=", 2)
			keyPath = parts[0]
			valueStr = parts[1]
			i++ // Consume only this argument
		} else {
			// Handle "--key value" or "--booleanflag"
			keyPath = argContent
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				// Assume boolean flag is true if no value follows
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2 // Consume flag and value arguments
			}
		}

		if len(valueStr) > MaxValueSize {
			return nil, fmt.Errorf("value for %q exceeds maximum size %d bytes", keyPath, MaxValueSize)
		}

		// Validate keyPath segments
		for _, segment := range strings.Split(keyPath, ".") {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		result = append(result, cliOverride{path: keyPath, value: parseValue(valueStr)})
	}

	return result, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		// .conf, .config and anything else: detect from content
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// TOML before YAML: simple "key = value" lines are valid YAML scalars
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}
