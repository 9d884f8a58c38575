// FILE: lixenwraith/globalconfig/discovery.go
package globalconfig

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions configures automatic config file discovery
type FileDiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths (in addition to defaults)
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// CLI flag to check (e.g., "--config")
	CLIFlag string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".json", ".yaml", ".yml"},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery sets the configuration file from the first match of:
// the CLI flag, the environment variable, then the search paths.
// The CLI flag and its value are removed from the builder's arguments.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if path, ok := DiscoverFile(opts, b.args); ok {
		b.file = path
	}
	if opts.CLIFlag != "" {
		b.args = stripFlag(b.args, opts.CLIFlag)
	}
	return b
}

// DiscoverFile resolves a configuration file path. A path named by the CLI
// flag or the environment variable is returned without checking existence.
func DiscoverFile(opts FileDiscoveryOptions, args []string) (string, bool) {
	// Check CLI args first (highest priority)
	if opts.CLIFlag != "" {
		for i, arg := range args {
			if arg == opts.CLIFlag && i+1 < len(args) {
				return args[i+1], true
			}
			if strings.HasPrefix(arg, opts.CLIFlag+"=") {
				return strings.TrimPrefix(arg, opts.CLIFlag+"="), true
			}
		}
	}

	// Check environment variable
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path, true
		}
	}

	var searchPaths []string
	searchPaths = append(searchPaths, opts.Paths...)

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}

	if opts.UseXDG {
		searchPaths = append(searchPaths, getXDGConfigPaths(opts.Name)...)
	}

	for _, dir := range searchPaths {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}

	// No file found is not an error - app can run with defaults/env
	return "", false
}

// stripFlag removes "flag value" and "flag=value" from args so the CLI source
// does not treat the file path as a configuration key.
func stripFlag(args []string, flag string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == flag {
			i++ // Skip the value as well
			continue
		}
		if strings.HasPrefix(args[i], flag+"=") {
			continue
		}
		out = append(out, args[i])
	}
	return out
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(appName string) []string {
	var paths []string

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
