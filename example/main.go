// FILE: lixenwraith/globalconfig/example/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/lixenwraith/globalconfig"
)

// AppConfig defines the configuration structure used for defaults and Scan.
type AppConfig struct {
	Server struct {
		Host     string `toml:"host"`
		Port     int64  `toml:"port"`
		LogLevel string `toml:"log_level"`
	} `toml:"server"`
	FeatureFlags map[string]bool `toml:"feature_flags"`
}

const configFilePath = "config.toml"

func main() {
	// =========================================================================
	// PART 1: INITIAL SETUP
	// Write a config.toml for the program to read.
	// =========================================================================
	log.Println("---")
	log.Println("PART 1: Creating initial configuration file...")

	defer func() {
		log.Println("---")
		log.Println("Cleaning up...")
		os.Remove(configFilePath)
		os.Unsetenv("APP_SERVER_PORT")
		log.Printf("Removed %s and unset APP_SERVER_PORT.", configFilePath)
	}()

	defaults := &AppConfig{}
	defaults.Server.Host = "localhost"
	defaults.Server.Port = 8080
	defaults.Server.LogLevel = "info"
	defaults.FeatureFlags = map[string]bool{"enable_metrics": true}

	if err := createInitialConfigFile(defaults); err != nil {
		log.Fatalf("Failed during initial file creation: %v", err)
	}
	log.Printf("Initial configuration saved to %s.", configFilePath)

	// =========================================================================
	// PART 2: BUILDING THE STORE
	// Sources are merged as CLI > env > file > defaults.
	// =========================================================================
	log.Println("---")
	log.Println("PART 2: Building the store...")

	os.Setenv("APP_SERVER_PORT", "8888")
	log.Println("   (Set environment variable APP_SERVER_PORT=8888)")

	validator := func(s *globalconfig.Store) error {
		port, err := globalconfig.GetTyped[int64](s, "server.port")
		if err != nil {
			return err
		}
		if port < 1024 || port > 65535 {
			return fmt.Errorf("port %d is outside the recommended range (1024-65535)", port)
		}
		return nil
	}

	target := &AppConfig{}
	store, err := globalconfig.NewBuilder().
		WithDefaults(defaults).
		WithFile(configFilePath).
		WithEnvPrefix("APP_").
		WithArgs([]string{"--server.log_level=debug"}).
		WithValidator(validator).
		BuildAndScan(target)
	if err != nil {
		log.Fatalf("Builder failed: %v", err)
	}
	log.Println("Builder finished successfully.")
	printCurrentState(target, "Initial State (CLI > Env > File)")

	// =========================================================================
	// PART 3: SET-ONCE SEMANTICS
	// The built store is frozen; further Set calls are rejected.
	// =========================================================================
	log.Println("---")
	log.Println("PART 3: Set-once semantics...")

	err = store.Set(globalconfig.NewMap().Set("server", "replaced"))
	if errors.Is(err, globalconfig.ErrAlreadySet) {
		log.Printf("Second Set rejected as expected: %v", err)
	} else {
		log.Fatalf("Expected ErrAlreadySet, got %v", err)
	}

	log.Printf("server.host = %v", store.Get("server.host", nil))
	log.Printf("server.timeout = %v (fallback)", store.Get("server.timeout", "30s"))

	// =========================================================================
	// PART 4: INCREMENTAL ASSEMBLY
	// Unfrozen sets with assign merge top-level keys.
	// =========================================================================
	log.Println("---")
	log.Println("PART 4: Incremental assembly with assign...")

	store.Reset()
	if err := store.Set(globalconfig.NewMap().Set("service", "api"), globalconfig.Freeze(false)); err != nil {
		log.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(globalconfig.NewMap().Set("replicas", 3), globalconfig.Assign(true)); err != nil {
		log.Fatalf("Assign failed: %v", err)
	}

	serialized, err := store.Serialize()
	if err != nil {
		log.Fatalf("Serialize failed: %v", err)
	}
	log.Printf("Serialized: %s", serialized)
	log.Printf("Frozen after assign: %v", store.IsFrozen())
}

// createInitialConfigFile writes the file-level values that differ from defaults.
func createInitialConfigFile(data *AppConfig) error {
	m, err := globalconfig.FromStruct(data, "toml")
	if err != nil {
		return err
	}
	m.Set("feature_flags", globalconfig.NewMap().
		Set("enable_metrics", true).
		Set("enable_tracing", false))

	s := globalconfig.New()
	if err := s.Set(m); err != nil {
		return err
	}
	return s.Save(configFilePath)
}

// printCurrentState is a helper to display the typed config state.
func printCurrentState(cfg *AppConfig, title string) {
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("             %s\n", title)
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("     Server Host:      %s\n", cfg.Server.Host)
	fmt.Printf("     Server Port:      %d\n", cfg.Server.Port)
	fmt.Printf("     Server Log Level: %s\n", cfg.Server.LogLevel)
	fmt.Printf("     Feature Flags:    %v\n", cfg.FeatureFlags)
	fmt.Println("   --------------------------------------------------")
}
