// Package models defines the data structures shared across the engine:
// head documents, detection outcomes, cache entries, and configuration.
package models

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the engine and its host
// surfaces. Values come from defaults, then an optional YAML file,
// then MEDIUMGATE_* environment variables, in that order.
type Config struct {
	Detection DetectionConfig `yaml:"detection"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
}

// DetectionConfig tunes classification.
type DetectionConfig struct {
	Threshold    int      `yaml:"threshold"`     // minimum score for a Medium verdict
	ExtraDomains []string `yaml:"extra_domains"` // appended to the built-in allowlist
	MirrorBase   string   `yaml:"mirror_base"`   // mirror origin for rewrites
}

// FetchConfig tunes the head probe.
type FetchConfig struct {
	TimeoutMS int    `yaml:"timeout_ms"`
	MaxBytes  int64  `yaml:"max_bytes"` // local read cap; servers may ignore the range hint
	UserAgent string `yaml:"user_agent"`
}

// CacheConfig selects and tunes the hostname cache. An empty RedisURL
// means the in-process store.
type CacheConfig struct {
	TTL      string `yaml:"ttl"` // Go duration string, e.g. "10m"
	Capacity int    `yaml:"capacity"`
	RedisURL string `yaml:"redis_url"`
}

// ServerConfig tunes the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig points at the SQLite history/preferences database. An
// empty path places the file next to the executable.
type StoreConfig struct {
	Path string `yaml:"path"`
}

const (
	DefaultThreshold  = 8
	DefaultMirrorBase = "https://freedium-mirror.cfd"
	DefaultTimeoutMS  = 3000
	DefaultMaxBytes   = 128 * 1024
	DefaultUserAgent  = "mediumgate/1.0"
	DefaultCacheTTL   = 10 * time.Minute
	DefaultCapacity   = 512
	DefaultAddr       = ":8455"
)

// DefaultConfig returns a config with every field at its built-in
// default.
func DefaultConfig() *Config {
	return &Config{
		Detection: DetectionConfig{
			Threshold:  DefaultThreshold,
			MirrorBase: DefaultMirrorBase,
		},
		Fetch: FetchConfig{
			TimeoutMS: DefaultTimeoutMS,
			MaxBytes:  DefaultMaxBytes,
			UserAgent: DefaultUserAgent,
		},
		Cache: CacheConfig{
			TTL:      DefaultCacheTTL.String(),
			Capacity: DefaultCapacity,
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then
// applies environment overrides. A missing file is not an error; a
// malformed one is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Detection.Threshold = getEnvInt("MEDIUMGATE_THRESHOLD", c.Detection.Threshold)
	c.Detection.MirrorBase = getEnv("MEDIUMGATE_MIRROR_BASE", c.Detection.MirrorBase)
	c.Fetch.TimeoutMS = getEnvInt("MEDIUMGATE_TIMEOUT_MS", c.Fetch.TimeoutMS)
	c.Fetch.UserAgent = getEnv("MEDIUMGATE_USER_AGENT", c.Fetch.UserAgent)
	c.Cache.TTL = getEnv("MEDIUMGATE_CACHE_TTL", c.Cache.TTL)
	c.Cache.RedisURL = getEnv("MEDIUMGATE_REDIS_URL", c.Cache.RedisURL)
	c.Server.Addr = getEnv("MEDIUMGATE_ADDR", c.Server.Addr)
	c.Store.Path = getEnv("MEDIUMGATE_DB_PATH", c.Store.Path)
}

// CacheTTL parses the configured TTL, falling back to the default on
// an empty or malformed value.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return DefaultCacheTTL
	}
	return d
}

// FetchTimeout returns the probe timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	if c.Fetch.TimeoutMS <= 0 {
		return DefaultTimeoutMS * time.Millisecond
	}
	return time.Duration(c.Fetch.TimeoutMS) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
