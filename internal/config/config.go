// Package config loads server configuration from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"cnmaturity/internal/engine"
)

// DefaultJWTSecret is only meant for local development
const DefaultJWTSecret = "super-secret-key-change-in-production"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Session SessionConfig `mapstructure:"session"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Results ResultsConfig `mapstructure:"results"`
}

type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Catalog sources
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourceMongo    = "mongo"
)

type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Dir    string `mapstructure:"dir"` // holds questions/ and optionally knowledge/
}

// Session stores
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type SessionConfig struct {
	Store    string        `mapstructure:"store"`
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type ScoringConfig struct {
	Thresholds engine.Thresholds `mapstructure:"thresholds"`
}

type ResultsConfig struct {
	Archive bool `mapstructure:"archive"`
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MATURITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Redis.Addr = strings.TrimPrefix(cfg.Redis.Addr, "redis://")
	cfg.Server.CORSAllowedOrigins = splitOrigins(cfg.Server.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("catalog.source", SourceEmbedded)
	v.SetDefault("catalog.dir", "")

	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.capacity", 10000)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "maturitydb")
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("scoring.thresholds.intermediate", engine.DefaultThresholds.Intermediate)
	v.SetDefault("scoring.thresholds.advanced", engine.DefaultThresholds.Advanced)

	v.SetDefault("results.archive", false)
}

// bindLegacyEnv keeps the plain variable names deployments already set
func bindLegacyEnv(v *viper.Viper) {
	legacy := map[string]string{
		"server.port":                 "PORT",
		"server.cors_allowed_origins": "CORS_ALLOWED_ORIGINS",
		"mongo.uri":                   "MONGO_URI",
		"redis.addr":                  "REDIS_URI",
		"auth.jwt_secret":             "JWT_SECRET",
	}
	for key, env := range legacy {
		prefixed := "MATURITY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, env)
	}
}

// splitOrigins accepts both a YAML list and a comma separated env value
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Catalog.Source {
	case SourceEmbedded, SourceMongo:
	case SourceDir:
		if c.Catalog.Dir == "" {
			errs = append(errs, errors.New("catalog.dir is required when catalog.source is dir"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog.source %q", c.Catalog.Source))
	}
	switch c.Session.Store {
	case StoreMemory:
		if c.Session.Capacity <= 0 {
			errs = append(errs, errors.New("session.capacity must be positive"))
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required when session.store is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session.store %q", c.Session.Store))
	}
	if c.Session.TTL < 0 {
		errs = append(errs, errors.New("session.ttl must not be negative"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret must be set"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if err := c.Scoring.Thresholds.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scoring.thresholds: %w", err))
	}
	if c.NeedsMongo() && c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required"))
	}
	return errors.Join(errs...)
}

// NeedsMongo reports whether any component reads or writes MongoDB
func (c *Config) NeedsMongo() bool {
	return c.Catalog.Source == SourceMongo || c.Results.Archive
}

// Addr is the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
