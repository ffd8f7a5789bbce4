package clihost

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigSetsConcurrencyLimit(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxConcurrentNative != 8 {
		t.Errorf("got MaxConcurrentNative %d, want 8", cfg.MaxConcurrentNative)
	}
	if cfg.NativeAllowlist != nil {
		t.Errorf("expected a nil allowlist by default, got %v", cfg.NativeAllowlist)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stratum.yaml")
	const doc = `
native_allowlist: [print, len]
frame_limit: 256
max_concurrent_native: 2
debug_socket: /tmp/stratum.sock
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FrameLimit != 256 {
		t.Errorf("got FrameLimit %d, want 256", cfg.FrameLimit)
	}
	if cfg.MaxConcurrentNative != 2 {
		t.Errorf("got MaxConcurrentNative %d, want 2", cfg.MaxConcurrentNative)
	}
	if cfg.DebugSocket != "/tmp/stratum.sock" {
		t.Errorf("got DebugSocket %q, want /tmp/stratum.sock", cfg.DebugSocket)
	}
	if len(cfg.NativeAllowlist) != 2 || cfg.NativeAllowlist[0] != "print" || cfg.NativeAllowlist[1] != "len" {
		t.Errorf("got NativeAllowlist %v, want [print len]", cfg.NativeAllowlist)
	}
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected an error loading a nonexistent config file")
	}
}
