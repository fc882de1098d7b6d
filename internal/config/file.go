package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file and default settings.
const (
	EnvConfig  = "QUIZREEL_CONFIG"
	EnvAssets  = "QUIZREEL_ASSETS"
	EnvFFmpeg  = "QUIZREEL_FFMPEG"
	EnvFFprobe = "QUIZREEL_FFPROBE"
)

// LoadDotEnv reads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the optional
// config file (explicit path or $QUIZREEL_CONFIG), then tool overrides from
// the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if assets := strings.TrimSpace(os.Getenv(EnvAssets)); assets != "" {
		cfg = DefaultWithAssets(assets)
	}

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfig))
	}
	if path != "" {
		if err := ReadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvFFmpeg)); v != "" {
		cfg.Tools.FFmpeg = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFFprobe)); v != "" {
		cfg.Tools.FFprobe = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ReadFile overlays the settings found in a YAML or TOML file onto cfg.
// Keys missing from the file keep their current values.
func ReadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q (use .yaml or .toml)", filepath.Ext(path))
	}
	return nil
}

// WriteFile stores cfg in the format implied by the file extension.
func WriteFile(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
