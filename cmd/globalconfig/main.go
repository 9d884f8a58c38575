// FILE: lixenwraith/globalconfig/cmd/globalconfig/main.go
// Command globalconfig loads a configuration the way applications using the
// package do and prints values from it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lixenwraith/globalconfig"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  globalconfig [flags] get <key> [fallback] [-- --key=value ...]")
	fmt.Fprintln(w, "  globalconfig [flags] serialize [-- --key=value ...]")
	fmt.Fprintln(w, "  globalconfig [flags] paths [-- --key=value ...]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config file       configuration file (toml, json or yaml)")
	fmt.Fprintln(w, "  -format f          force the file format")
	fmt.Fprintln(w, "  -env-prefix P      environment variable prefix, e.g. MYAPP_")
	fmt.Fprintln(w, "  -environment e     environment overlay read before root keys")
	fmt.Fprintln(w, "  -out f             output format of serialize: json, toml or yaml")
	fmt.Fprintln(w, "  -v                 debug logging on stderr")
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("globalconfig", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	var (
		file        string
		format      string
		envPrefix   string
		environment string
		out         string
		verbose     bool
	)
	fs.StringVar(&file, "config", "", "configuration file")
	fs.StringVar(&format, "format", "", "force the file format")
	fs.StringVar(&envPrefix, "env-prefix", "", "environment variable prefix")
	fs.StringVar(&environment, "environment", "", "environment overlay")
	fs.StringVar(&out, "out", "json", "output format of serialize")
	fs.BoolVar(&verbose, "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}

	// Everything after "--" overrides configuration paths
	command, overrides := splitOverrides(rest)
	if len(command) == 0 {
		printUsage(stderr)
		return 2
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Str("component", "globalconfig").Logger()

	store, err := globalconfig.NewBuilder().
		WithFile(strings.TrimSpace(file)).
		WithFormat(globalconfig.Format(format)).
		WithEnvPrefix(envPrefix).
		WithEnvironment(environment).
		WithArgs(overrides).
		WithLogger(logger).
		Build()
	if err != nil {
		if !errors.Is(err, globalconfig.ErrConfigNotFound) {
			logger.Error().Err(err).Msg("failed to load configuration")
			return 1
		}
		logger.Warn().Str("file", file).Msg("configuration file not found, using environment and arguments only")
	}

	switch command[0] {
	case "get":
		return runGet(store, command[1:], stdout, logger)
	case "serialize":
		return runSerialize(store, globalconfig.Format(out), stdout, logger)
	case "paths":
		for _, path := range store.Paths() {
			fmt.Fprintln(stdout, path)
		}
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command[0])
		printUsage(stderr)
		return 2
	}
}

// splitOverrides separates the command words from the "--" override arguments.
func splitOverrides(args []string) (command, overrides []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

func runGet(store *globalconfig.Store, args []string, stdout io.Writer, logger zerolog.Logger) int {
	if len(args) == 0 || len(args) > 2 {
		logger.Error().Msg("get requires <key> and an optional [fallback]")
		return 2
	}

	var fallback any
	if len(args) == 2 {
		fallback = args[1]
	}

	value := store.Get(args[0], fallback)
	if s, ok := value.(string); ok {
		fmt.Fprintln(stdout, s)
		return 0
	}

	text, err := globalconfig.EncodeJSON(value)
	if err != nil {
		logger.Error().Err(err).Str("key", args[0]).Msg("failed to encode value")
		return 1
	}
	fmt.Fprintln(stdout, string(text))
	return 0
}

func runSerialize(store *globalconfig.Store, format globalconfig.Format, stdout io.Writer, logger zerolog.Logger) int {
	text, err := store.SerializeAs(format)
	if err != nil {
		logger.Error().Err(err).Str("format", string(format)).Msg("failed to serialize configuration")
		return 1
	}
	fmt.Fprintln(stdout, strings.TrimRight(text, "\n"))
	return 0
}
