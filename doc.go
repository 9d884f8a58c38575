// FILE: lixenwraith/globalconfig/doc.go

// Package globalconfig provides a process-wide configuration store: a single
// object holding application configuration that is set once (optionally
// extendable), read through dot-path keys and serializable to text.
//
// Features:
//   - Guarded writes: the first Set freezes the store unless Freeze(false) is passed
//   - Shallow extension of an unfrozen store with Assign(true)
//   - Dot-path reads across mappings and sequences ("server.hosts.0")
//   - Insertion-ordered mappings, so Serialize reproduces the order keys were set in
//   - Environment overlays ("production.server.port" shadows "server.port")
//   - Loading from TOML, JSON and YAML files, environment variables and CLI arguments
//   - Subtree decoding into structs through mapstructure
//   - Thread-safe operations using sync.RWMutex
//
// Quick Start:
//
//	cfg := globalconfig.NewMap()
//	cfg.Set("server", globalconfig.NewMap().
//	    Set("host", "localhost").
//	    Set("port", 8080))
//
//	store := globalconfig.New()
//	if err := store.Set(cfg); err != nil {
//	    log.Fatal(err)
//	}
//
//	host := store.Get("server.host", "127.0.0.1")
//	text, _ := store.Serialize() // {"server":{"host":"localhost","port":8080}}
//
// Write Semantics:
//
//	store.Set(base, globalconfig.Freeze(false))   // store stays open
//	store.Set(extra, globalconfig.Assign(true))   // shallow merge, then frozen
//	store.Set(other)                              // fails with ErrAlreadySet
//
// Building From Sources:
//
//	store, err := globalconfig.NewBuilder().
//	    WithDefaults(defaults).
//	    WithEnvPrefix("MYAPP_").
//	    WithFile("config.toml").
//	    Build()
//
// Default Precedence (highest to lowest):
//  1. Command-line arguments (--server.port=9090)
//  2. Environment variables (MYAPP_SERVER_PORT=9090)
//  3. Configuration file (config.toml)
//  4. Default values
//
// Thread Safety:
// All operations are thread-safe. Set holds the write lock across the frozen
// check, the mutation and the freeze flag update. Reads share a read lock and
// return live references to stored values, which callers must treat as read-only.
package globalconfig
