// FILE: lixenwraith/globalconfig/cmd/globalconfig/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLI(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(configFile, []byte(`{
  "server": {"host": "localhost", "port": 8080},
  "tags": ["a", "b"],
  "production": {"server": {"host": "prod.example.com"}}
}`), 0644))

	base := []string{"-config", configFile, "-env-prefix", "GCCLI_"}

	t.Run("GetString", func(t *testing.T) {
		code, out, _ := runCLI(t, append(base, "get", "server.host")...)
		assert.Equal(t, 0, code)
		assert.Equal(t, "localhost\n", out)
	})

	t.Run("GetNumberAndMapping", func(t *testing.T) {
		code, out, _ := runCLI(t, append(base, "get", "server.port")...)
		assert.Equal(t, 0, code)
		assert.Equal(t, "8080\n", out)

		code, out, _ = runCLI(t, append(base, "get", "server")...)
		assert.Equal(t, 0, code)
		assert.Equal(t, `{"host":"localhost","port":8080}`+"\n", out)
	})

	t.Run("GetFallback", func(t *testing.T) {
		code, out, _ := runCLI(t, append(base, "get", "missing.key", "fallback")...)
		assert.Equal(t, 0, code)
		assert.Equal(t, "fallback\n", out)

		code, out, _ = runCLI(t, append(base, "get", "missing.key")...)
		assert.Equal(t, 0, code)
		assert.Equal(t, "null\n", out)
	})

	t.Run("Environment", func(t *testing.T) {
		args := []string{"-config", configFile, "-env-prefix", "GCCLI_", "-environment", "production", "get", "server.host"}
		code, out, _ := runCLI(t, args...)
		assert.Equal(t, 0, code)
		assert.Equal(t, "prod.example.com\n", out)
	})

	t.Run("Overrides", func(t *testing.T) {
		code, out, _ := runCLI(t, append(base, "get", "server.port", "--", "--server.port=9090")...)
		assert.Equal(t, 0, code)
		assert.Equal(t, "9090\n", out)
	})

	t.Run("Serialize", func(t *testing.T) {
		code, out, _ := runCLI(t, append(base, "serialize")...)
		assert.Equal(t, 0, code)
		assert.Equal(t, `{"server":{"host":"localhost","port":8080},"tags":["a","b"],"production":{"server":{"host":"prod.example.com"}}}`+"\n", out)
	})

	t.Run("SerializeYAML", func(t *testing.T) {
		args := []string{"-config", configFile, "-env-prefix", "GCCLI_", "-out", "yaml", "serialize"}
		code, out, _ := runCLI(t, args...)
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "server:\n  host: localhost\n  port: 8080\n")
	})

	t.Run("Paths", func(t *testing.T) {
		code, out, _ := runCLI(t, append(base, "paths")...)
		assert.Equal(t, 0, code)
		assert.Equal(t, "production.server.host\nserver.host\nserver.port\ntags\n", out)
	})

	t.Run("Errors", func(t *testing.T) {
		code, _, stderr := runCLI(t)
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "Usage:")

		code, _, stderr = runCLI(t, append(base, "unknown")...)
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "Unknown command: unknown")

		code, _, _ = runCLI(t, append(base, "get")...)
		assert.Equal(t, 2, code)

		code, _, _ = runCLI(t, "-config", filepath.Join(t.TempDir(), "bad.json"), "-format", "ini", "paths")
		assert.Equal(t, 1, code)

		code, _, _ = runCLI(t, append(base, "-out", "xml", "serialize")...)
		assert.NotEqual(t, 0, code)
	})

	t.Run("MissingFileFallsBackToArguments", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.toml")
		code, out, _ := runCLI(t, "-config", missing, "-env-prefix", "GCCLI_", "get", "name", "--", "--name=cli")
		assert.Equal(t, 0, code)
		assert.Equal(t, "cli\n", out)
	})
}
