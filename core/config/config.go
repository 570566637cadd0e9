// Package config loads the codemark configuration: the annotation
// definitions, logging and the HTTP service settings.
//
// Sources are layered as struct defaults, then an optional YAML file, then
// CODEMARK__ environment variables.
package config

import (
	"time"

	"github.com/FocuswithJustin/codemark/core/registry"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "CODEMARK"

// Config is the full configuration.
type Config struct {
	// NativeAnnotations includes the built-in definitions ahead of
	// Annotations.
	NativeAnnotations bool                  `koanf:"native_annotations" yaml:"native_annotations"`
	Annotations       []registry.ConfigItem `koanf:"annotations" yaml:"annotations"`

	Source  SourceConfig  `koanf:"source" yaml:"source"`
	Logging LoggingConfig `koanf:"logging" yaml:"logging"`
	Server  ServerConfig  `koanf:"server" yaml:"server"`
}

// SourceConfig holds defaults for the directive text format.
type SourceConfig struct {
	// Lang is used when a request does not name a language.
	Lang string `koanf:"lang" yaml:"lang"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes" yaml:"max_body_bytes"`

	// CacheBytes bounds the response cache; 0 disables it.
	CacheBytes int64 `koanf:"cache_bytes" yaml:"cache_bytes"`

	// AllowedOrigins restricts CORS and WebSocket origins. Empty allows
	// every origin.
	AllowedOrigins []string `koanf:"allowed_origins" yaml:"allowed_origins,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		NativeAnnotations: true,
		Source:            SourceConfig{Lang: "ts"},
		Logging:           LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			CacheBytes:      8 << 20,
		},
	}
}

// Load reads the configuration from the optional YAML file at path and
// the environment, then validates it.
func Load(path string) (*Config, error) {
	loader := NewLoader(EnvPrefix)
	if err := loader.LoadWithDefaults(Defaults(), path); err != nil {
		return nil, err
	}
	return Unmarshal(loader)
}

// Unmarshal decodes and validates the configuration held by loader.
func Unmarshal(loader *Loader) (*Config, error) {
	var cfg Config
	if err := loader.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Items returns the annotation definitions the registry is built from.
func (c *Config) Items() []registry.ConfigItem {
	var items []registry.ConfigItem
	if c.NativeAnnotations {
		items = append(items, registry.DefaultConfig()...)
	}
	return append(items, c.Annotations...)
}

// Registry builds the annotation registry. A configuration with no
// definitions at all yields the default registry.
func (c *Config) Registry() (*registry.Registry, error) {
	items := c.Items()
	if len(items) == 0 {
		return registry.Default(), nil
	}
	return registry.Build(items)
}
