// Package config loads ticketflow settings from defaults, an optional
// ticketflow.yaml, TICKETFLOW_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	fileName  = "ticketflow"
	fileType  = "yaml"
	envPrefix = "TICKETFLOW"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the decoded configuration.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	MCP     MCPConfig     `mapstructure:"mcp"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Backend string        `mapstructure:"backend"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	// Lock enables distributed session locks.
	Lock bool `mapstructure:"lock"`
}

type CatalogConfig struct {
	// Path of a YAML trail file replacing the built-in trails.
	Path string `mapstructure:"path"`
}

type MCPConfig struct {
	// Transport is "stdio" or "sse".
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

// New returns a viper instance with defaults and environment binding.
// TICKETFLOW_STORE_BACKEND overrides store.backend, and so on.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("http.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.dir", ".ticketflow")
	v.SetDefault("store.ttl", time.Duration(0))
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "ticketflow:session:")
	v.SetDefault("redis.lock", false)
	v.SetDefault("catalog.path", "")
	v.SetDefault("mcp.transport", "stdio")
	v.SetDefault("mcp.port", 8081)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the result.
// With an empty path, ticketflow.yaml is searched in the working directory and
// a missing file is not an error. An explicit path must exist.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	var errs []error
	backends := []string{BackendMemory, BackendFile, BackendRedis, BackendSQLite}
	if !slices.Contains(backends, c.Store.Backend) {
		errs = append(errs, fmt.Errorf("store.backend: %q is not one of %v", c.Store.Backend, backends))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, fmt.Errorf("store.ttl: must not be negative"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port: %d out of range", c.HTTP.Port))
	}
	if c.MCP.Transport != "stdio" && c.MCP.Transport != "sse" {
		errs = append(errs, fmt.Errorf("mcp.transport: %q is not stdio or sse", c.MCP.Transport))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: %q is not text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}
