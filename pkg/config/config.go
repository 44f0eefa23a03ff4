// Package config loads portgraph configuration from TOML files.
//
// Configuration is looked up at $XDG_CONFIG_HOME/portgraph/config.toml
// (falling back to ~/.config/portgraph/config.toml) and can be overridden
// with an explicit path. A missing file yields the defaults, so the tool
// works with zero configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/portgraph/portgraph/pkg/errors"
)

// Defaults used when no configuration file is present.
const (
	DefaultExtractCommand = "emerge-{board} --pretend --emptytree --output-tree"
	DefaultServerAddr     = "127.0.0.1:8080"
)

// Config is the complete portgraph configuration.
type Config struct {
	// Board is the default build target, used when --board is not given.
	Board string `toml:"board"`

	// Sysroot overrides the board install root. Empty means the root is
	// adopted from the extracted dependency tree.
	Sysroot string `toml:"sysroot"`

	// ExtractCommand is the shell-style command that emits a deps-tree
	// document on stdout. {board} is substituted with the target board.
	ExtractCommand string `toml:"extract_command"`

	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the file cache directory. Empty uses the XDG cache dir.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig holds redis connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StoreConfig selects and configures the graph store backend.
type StoreConfig struct {
	// Backend is one of "memory" or "mongo".
	Backend string `toml:"backend"`

	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig holds MongoDB settings for the mongo store backend.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// ServerConfig holds HTTP API server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the zero-configuration defaults.
func Default() Config {
	return Config{
		ExtractCommand: DefaultExtractCommand,
		Cache: CacheConfig{
			Backend: "file",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Store: StoreConfig{
			Backend: "memory",
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: "portgraph"},
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// Load reads configuration from path. An empty path uses the default
// location; a missing file at the default location returns Default().
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultPath returns the config file location using the XDG standard
// (~/.config/portgraph/config.toml).
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "portgraph", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "portgraph-config.toml")
	}
	return filepath.Join(home, ".config", "portgraph", "config.toml")
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"cache backend %q must be file, redis, or none", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "", "memory", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"store backend %q must be memory or mongo", c.Store.Backend)
	}
	if c.Board != "" {
		if err := errors.ValidateBoard(c.Board); err != nil {
			return err
		}
	}
	return nil
}
