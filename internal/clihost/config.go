package clihost

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the `--config` YAML document: native function allowlist and
// VM resource limits, mirroring the teacher's own YAML-backed module
// metadata (internal/modules uses yaml.v3 for its manifest format).
type Config struct {
	// NativeAllowlist restricts which entries of nativefn.All are
	// installed into the VM; nil (the YAML key absent) means "allow
	// everything registered".
	NativeAllowlist []string `yaml:"native_allowlist"`
	// FrameLimit overrides the VM's default call-frame depth limit.
	FrameLimit int `yaml:"frame_limit"`
	// MaxConcurrentNative bounds internal/scheduler's native-blocking
	// concurrency.
	MaxConcurrentNative int64 `yaml:"max_concurrent_native"`
	// DebugSocket is a unix socket path read from the config file. It is
	// only parsed and stored: nothing in this module opens or listens on
	// it.
	DebugSocket string `yaml:"debug_socket"`
}

// DefaultConfig returns the configuration used when no --config file is
// given.
func DefaultConfig() Config {
	return Config{MaxConcurrentNative: 8}
}

// LoadConfig reads and parses a YAML config file at path.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
