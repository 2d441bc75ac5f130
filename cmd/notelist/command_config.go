package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"notelist/internal/config"
)

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type configOutput struct {
	ConfigPath string                 `json:"config_path,omitempty" toml:"config_path,omitempty"`
	Remote     effectiveRemoteConfig  `json:"remote" toml:"remote"`
	Logging    effectiveLoggingConfig `json:"logging" toml:"logging"`
	UI         effectiveUIConfig      `json:"ui" toml:"ui"`
	Host       effectiveHostConfig    `json:"host" toml:"host"`
}

type effectiveRemoteConfig struct {
	Address        string `json:"address" toml:"address"`
	URL            string `json:"url" toml:"url"`
	TimeoutSeconds int    `json:"timeout_seconds" toml:"timeout_seconds"`
}

type effectiveLoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

type effectiveUIConfig struct {
	PageSize    int               `json:"page_size" toml:"page_size"`
	DefaultStep float64           `json:"default_step" toml:"default_step"`
	Keys        map[string]string `json:"keys,omitempty" toml:"keys,omitempty"`
}

type effectiveHostConfig struct {
	Address string `json:"address" toml:"address"`
	DBPath  string `json:"db_path" toml:"db_path"`
}

func newConfigCommand(env *commandEnv) *cobra.Command {
	var (
		defaults bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration (or the defaults)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolvedFormat, err := resolveConfigFormat(format)
			if err != nil {
				return err
			}
			var cfg config.Config
			if defaults {
				cfg = config.DefaultConfig()
			} else if cfg, err = env.config(); err != nil {
				return err
			}
			payload, err := buildConfigOutput(cfg)
			if err != nil {
				return err
			}
			return writeConfigOutput(cmd.OutOrStdout(), resolvedFormat, payload)
		},
	}
	cmd.Flags().BoolVar(&defaults, "default", false, "print default config values")
	cmd.Flags().StringVar(&format, "format", configFormatJSON, "output format: json|toml")
	return cmd
}

func buildConfigOutput(cfg config.Config) (configOutput, error) {
	path, err := config.ConfigPath()
	if err != nil {
		return configOutput{}, err
	}
	dbPath, err := cfg.ResolveHostDBPath()
	if err != nil {
		return configOutput{}, err
	}
	return configOutput{
		ConfigPath: path,
		Remote: effectiveRemoteConfig{
			Address:        cfg.RemoteAddress(),
			URL:            cfg.RemoteURL(),
			TimeoutSeconds: int(cfg.RemoteTimeout().Seconds()),
		},
		Logging: effectiveLoggingConfig{
			Level: cfg.LogLevel(),
		},
		UI: effectiveUIConfig{
			PageSize:    cfg.PageSize(),
			DefaultStep: cfg.DefaultStep(),
			Keys:        cfg.KeyOverrides(),
		},
		Host: effectiveHostConfig{
			Address: cfg.HostAddress(),
			DBPath:  dbPath,
		},
	}, nil
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}
