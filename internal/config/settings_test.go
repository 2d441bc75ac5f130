package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RemoteAddress() != "127.0.0.1:4000" {
		t.Fatalf("unexpected remote address: %q", cfg.RemoteAddress())
	}
	if cfg.RemoteURL() != "http://127.0.0.1:4000/" {
		t.Fatalf("unexpected remote url: %q", cfg.RemoteURL())
	}
	if cfg.RemoteTimeout() != 10*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RemoteTimeout())
	}
	if cfg.PageSize() != 100 || cfg.DefaultStep() != 1 {
		t.Fatalf("unexpected ui defaults: page=%d step=%v", cfg.PageSize(), cfg.DefaultStep())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
}

func TestLoadFromTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".notelist")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := []byte("[remote]\naddress = \"http://10.0.0.5:4100/\"\ntimeout_seconds = 3\n\n[ui]\npage_size = 25\ndefault_step = 0.25\n\n[logging]\nlevel = \" debug \"\n")
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RemoteAddress() != "10.0.0.5:4100" {
		t.Fatalf("unexpected remote address: %q", cfg.RemoteAddress())
	}
	if cfg.RemoteTimeout() != 3*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RemoteTimeout())
	}
	if cfg.PageSize() != 25 || cfg.DefaultStep() != 0.25 {
		t.Fatalf("unexpected ui config: page=%d step=%v", cfg.PageSize(), cfg.DefaultStep())
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
	if cfg.HostAddress() != "127.0.0.1:4000" {
		t.Fatalf("expected host address default to survive, got %q", cfg.HostAddress())
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[remote\naddress = 1"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResolveHostDBPath(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	path, err := cfg.ResolveHostDBPath()
	if err != nil {
		t.Fatalf("ResolveHostDBPath default: %v", err)
	}
	if want := filepath.Join(home, ".notelist", "host.db"); path != want {
		t.Fatalf("unexpected default path: got=%q want=%q", path, want)
	}

	cfg.Host.DBPath = "~/state/live.db"
	path, err = cfg.ResolveHostDBPath()
	if err != nil {
		t.Fatalf("ResolveHostDBPath home: %v", err)
	}
	if want := filepath.Join(home, "state", "live.db"); path != want {
		t.Fatalf("unexpected home path: got=%q want=%q", path, want)
	}

	cfg.Host.DBPath = "/var/tmp/live.db"
	path, err = cfg.ResolveHostDBPath()
	if err != nil {
		t.Fatalf("ResolveHostDBPath abs: %v", err)
	}
	if path != "/var/tmp/live.db" {
		t.Fatalf("unexpected absolute path: %q", path)
	}
}

func TestKeyOverridesFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := []byte("[ui.keys]\n\" Save \" = \"ctrl+s\"\nfetch = \"\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	got := cfg.KeyOverrides()
	if len(got) != 1 || got["save"] != "ctrl+s" {
		t.Fatalf("unexpected overrides: %#v", got)
	}
}
