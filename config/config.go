// Package config loads report generation settings from YAML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all report generation settings.
type Config struct {
	Assets   AssetsConfig   `yaml:"assets"`
	Icons    IconsConfig    `yaml:"icons"`
	Document DocumentConfig `yaml:"document"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

// AssetsConfig locates the static images.
type AssetsConfig struct {
	BaseDir     string        `yaml:"base_dir"`
	Cover       string        `yaml:"cover"`
	Summary     string        `yaml:"summary"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	MaxBytes    int64         `yaml:"max_bytes"`
	// MaxImageDim bounds decoded raster images in pixels.
	MaxImageDim int `yaml:"max_image_dim"`
}

// IconsConfig maps instrument categories to vector icon references:
// refs[instrument][code].
type IconsConfig struct {
	Refs        map[string]map[string]string `yaml:"refs"`
	Parallelism int                          `yaml:"parallelism"`
}

// DocumentConfig fills the document information dictionary.
type DocumentConfig struct {
	Title    string `yaml:"title"`
	Subject  string `yaml:"subject"`
	Creator  string `yaml:"creator"`
	Producer string `yaml:"producer"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.Assets.BaseDir == "" {
		c.Assets.BaseDir = "assets"
	}
	if c.Assets.Cover == "" {
		c.Assets.Cover = "cover.png"
	}
	if c.Assets.HTTPTimeout <= 0 {
		c.Assets.HTTPTimeout = 30 * time.Second
	}
	if c.Assets.MaxBytes <= 0 {
		c.Assets.MaxBytes = 10 << 20
	}
	if c.Assets.MaxImageDim <= 0 {
		c.Assets.MaxImageDim = 1600
	}
	if c.Icons.Parallelism <= 0 {
		c.Icons.Parallelism = 4
	}
	if c.Document.Title == "" {
		c.Document.Title = "Self-Assessment Report"
	}
	if c.Document.Creator == "" {
		c.Document.Creator = "reportkit"
	}
	if c.Document.Producer == "" {
		c.Document.Producer = "reportkit"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 16 << 20
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 2 * time.Minute
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	if strings.TrimSpace(c.Assets.Cover) == "" {
		return fmt.Errorf("config: assets.cover is required")
	}
	return nil
}

// IconRef returns the icon reference for one category, or "".
func (c *Config) IconRef(instrument, code string) string {
	return c.Icons.Refs[instrument][code]
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
