// Package config loads splitplan settings from a TOML file and the environment.
//
// Lookup order, later wins:
//
//  1. built-in defaults ([Default])
//  2. the TOML file ($XDG_CONFIG_HOME/splitplan/config.toml or --config)
//  3. environment variables (SPLITPLAN_*)
//
// Example file:
//
//	[log]
//	level = "debug"
//
//	[cache]
//	backend = "redis"
//	prefix = "splitplan:"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//	read_timeout = "10s"
//
//	[render]
//	formats = ["svg", "png"]
//	detailed = true
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/splitplan/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "splitplan"

// Backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Environment variables.
const (
	EnvLogLevel   = "SPLITPLAN_LOG_LEVEL"
	EnvRedisAddr  = "SPLITPLAN_REDIS_ADDR"
	EnvMongoURI   = "SPLITPLAN_MONGO_URI"
	EnvServerAddr = "SPLITPLAN_ADDR"
)

// Config is the full configuration.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Plan   PlanConfig   `toml:"plan"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type PlanConfig struct {
	// MaxLayers caps the solver loop. Zero derives the cap from the demand.
	MaxLayers int `toml:"max_layers"`
}

type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Prefix  string      `toml:"prefix"`
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type StoreConfig struct {
	Backend    string        `toml:"backend"`
	URI        string        `toml:"uri"`
	Database   string        `toml:"database"`
	Collection string        `toml:"collection"`
	Timeout    time.Duration `toml:"timeout"`
}

type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxOutputs      int           `toml:"max_outputs"`
}

type RenderConfig struct {
	Formats   []string `toml:"formats"`
	Detailed  bool     `toml:"detailed"`
	Direction string   `toml:"direction"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:   LogConfig{Level: "info"},
		Cache: CacheConfig{Backend: CacheFile},
		Store: StoreConfig{
			Backend:    StoreMemory,
			Database:   AppName,
			Collection: "plans",
			Timeout:    10 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxOutputs:      64,
		},
		Render: RenderConfig{Formats: []string{"svg"}, Direction: "TB"},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// An empty path loads [DefaultPath] if it exists, and defaults otherwise.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides fields from SPLITPLAN_* variables. Setting a Redis
// address or Mongo URI also selects that backend.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.Backend = CacheRedis
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.Backend = StoreMongo
		c.Store.URI = v
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		c.Server.Addr = v
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return invalid("log.level %q must be one of %s", c.Log.Level, strings.Join(logLevels, ", "))
	}
	if c.Plan.MaxLayers < 0 {
		return invalid("plan.max_layers must not be negative")
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return invalid("cache.redis.addr is required for the redis backend")
		}
	default:
		return invalid("cache.backend %q must be file, redis or none", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreMongo:
		if c.Store.URI == "" {
			return invalid("store.uri is required for the mongo backend")
		}
	default:
		return invalid("store.backend %q must be memory or mongo", c.Store.Backend)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	if c.Server.MaxOutputs < 1 {
		return invalid("server.max_outputs must be at least 1")
	}
	switch c.Render.Direction {
	case "", "TB", "LR":
	default:
		return invalid("render.direction %q must be TB or LR", c.Render.Direction)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// DefaultPath returns $XDG_CONFIG_HOME/splitplan/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the file cache directory: cache.dir if set, else
// $XDG_CACHE_HOME/splitplan, falling back to ~/.cache.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultCacheDir returns the XDG cache directory for splitplan.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
