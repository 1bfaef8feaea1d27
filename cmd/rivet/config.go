package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfig = "RIVET_CONFIG"

// Config represents the rivet configuration file
// (~/.config/rivet/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`

	// Decoding
	Anchor    string `yaml:"anchor"`
	Strict    *bool  `yaml:"strict"`
	TOCLayout string `yaml:"toc_layout"`

	// Server
	ServerAddress string `yaml:"server_address"`
	MaxPatches    *int   `yaml:"max_patches"`

	// Hot reload
	VMURL     string `yaml:"vm_url"`
	VMURLFile string `yaml:"vm_url_file"`
	VMLogGlob string `yaml:"vm_log_glob"`
}

func configPath() string {
	if p := os.Getenv(envConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rivet", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config; a
// file that does not parse is an error.
func LoadConfig() (Config, error) {
	path := configPath()
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.LogFile != "" && !c.IsSet("log-file") {
		logFile = cfg.LogFile
	}
}

func applyAnchorConfig(c *cli.Command, cfg Config, anchor *string) {
	if cfg.Anchor != "" && !c.IsSet("anchor") {
		*anchor = cfg.Anchor
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxPatches *int) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxPatches != nil && !c.IsSet("max-patches") {
		*maxPatches = *cfg.MaxPatches
	}
}

type configKey struct{}

func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) Config {
	cfg, _ := ctx.Value(configKey{}).(Config)
	return cfg
}
