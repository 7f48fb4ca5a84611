package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Source kinds for datasets.source
const (
	SourceSQLite = "sqlite"
	SourceFiles  = "files"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Datasets DatasetsConfig `mapstructure:"datasets"`
	Log      LogConfig      `mapstructure:"log"`
	Sessions SessionsConfig `mapstructure:"sessions"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	StaticDir      string   `mapstructure:"static_dir"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DatasetsConfig selects where datasets are read from.
type DatasetsConfig struct {
	Dir    string `mapstructure:"dir"`
	Source string `mapstructure:"source"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dev   bool   `mapstructure:"dev"`
}

// SessionsConfig holds session expiry settings.
type SessionsConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// New returns a viper instance with defaults and CIVATLAS_ env overrides.
// Commands bind their flags into it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	// default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("database.path", "./civatlas.db")
	v.SetDefault("datasets.dir", "./data")
	v.SetDefault("datasets.source", SourceSQLite)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)
	v.SetDefault("sessions.ttl", 30*time.Minute)

	v.SetEnvPrefix("CIVATLAS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the optional YAML file (falling back to $CIVATLAS_CONFIG) and
// unmarshals the merged configuration.
func Load(v *viper.Viper, file string) (Config, error) {
	if file == "" {
		file = os.Getenv("CIVATLAS_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Datasets.Source {
	case SourceSQLite, SourceFiles:
	default:
		return fmt.Errorf("datasets.source: unknown source %q", c.Datasets.Source)
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("sessions.ttl: must be positive, got %s", c.Sessions.TTL)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port: required")
	}
	return nil
}
