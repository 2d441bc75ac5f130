package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultRemoteAddress  = "127.0.0.1:4000"
	defaultHostAddress    = "127.0.0.1:4000"
	defaultTimeoutSeconds = 10
	defaultPageSize       = 100
	defaultStep           = 1.0
	defaultHostDBPath     = "host.db"
)

type Config struct {
	Remote  RemoteConfig  `toml:"remote"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
	Host    HostConfig    `toml:"host"`
}

type RemoteConfig struct {
	Address        string `toml:"address"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type UIConfig struct {
	PageSize    int               `toml:"page_size"`
	DefaultStep float64           `toml:"default_step"`
	Keys        map[string]string `toml:"keys,omitempty"`
}

type HostConfig struct {
	Address string `toml:"address"`
	DBPath  string `toml:"db_path"`
}

func DefaultConfig() Config {
	return Config{
		Remote: RemoteConfig{
			Address:        defaultRemoteAddress,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			PageSize:    defaultPageSize,
			DefaultStep: defaultStep,
		},
		Host: HostConfig{
			Address: defaultHostAddress,
			DBPath:  defaultHostDBPath,
		},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFromPath(path)
}

func LoadFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RemoteAddress returns host:port of the GraphQL endpoint. A scheme or
// trailing slash in the configured value is tolerated.
func (c Config) RemoteAddress() string {
	return normalizeAddress(c.Remote.Address, defaultRemoteAddress)
}

func (c Config) RemoteURL() string {
	return "http://" + c.RemoteAddress() + "/"
}

func (c Config) RemoteTimeout() time.Duration {
	if c.Remote.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) PageSize() int {
	if c.UI.PageSize <= 0 {
		return defaultPageSize
	}
	return c.UI.PageSize
}

func (c Config) DefaultStep() float64 {
	if c.UI.DefaultStep <= 0 {
		return defaultStep
	}
	return c.UI.DefaultStep
}

// KeyOverrides returns the configured key per UI command, trimmed and with
// empty entries dropped.
func (c Config) KeyOverrides() map[string]string {
	out := map[string]string{}
	for command, key := range c.UI.Keys {
		command = strings.ToLower(strings.TrimSpace(command))
		key = strings.TrimSpace(key)
		if command == "" || key == "" {
			continue
		}
		out[command] = key
	}
	return out
}

func (c Config) HostAddress() string {
	return normalizeAddress(c.Host.Address, defaultHostAddress)
}

// ResolveHostDBPath expands the configured database path. Relative paths are
// resolved against DataDir.
func (c Config) ResolveHostDBPath() (string, error) {
	path := strings.TrimSpace(c.Host.DBPath)
	if path == "" {
		return HostDBPath()
	}
	return resolveConfigPath(path)
}

func normalizeAddress(raw, fallback string) string {
	addr := strings.TrimSpace(raw)
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return fallback
	}
	return addr
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func resolveConfigPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, path), nil
}
