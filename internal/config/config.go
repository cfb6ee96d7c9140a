package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SourcePostgres = "postgres"
	SourceFiles    = "files"
)

// Config holds all configuration (file + env overrides)
type Config struct {
	Server struct {
		Addr     string `mapstructure:"addr"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"server"`

	Postgres struct {
		Host         string `mapstructure:"host"`
		Port         int    `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		DBName       string `mapstructure:"db_name"`
		SSLMode      string `mapstructure:"ssl_mode"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
	} `mapstructure:"postgres"`

	Listener struct {
		Channel          string `mapstructure:"channel"`
		ReconnectSeconds int    `mapstructure:"reconnect_seconds"`
	} `mapstructure:"listener"`

	Catalog struct {
		Source     string `mapstructure:"source"`
		Dir        string `mapstructure:"dir"`
		DebounceMs int    `mapstructure:"debounce_ms"`
	} `mapstructure:"catalog"`

	Matcher struct {
		StrictConsistency              bool `mapstructure:"strict_consistency"`
		IncludeInstallTimeAssetModules bool `mapstructure:"include_install_time_asset_modules"`
	} `mapstructure:"matcher"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	_ = v.ReadInConfig() // optional; env can fully configure

	// Per-environment overlay, e.g. configs/prod.yaml
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = "dev"
	}
	if f, err := os.Open(filepath.Join("configs", env+".yaml")); err == nil {
		err = v.MergeConfig(f)
		f.Close()
		if err != nil {
			return Config{}, fmt.Errorf("merge %s config: %w", env, err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// bindEnv registers every key so AutomaticEnv also applies when the config
// file does not mention it.
func bindEnv(v *viper.Viper) {
	for _, k := range []string{
		"server.addr", "server.log_level",
		"postgres.host", "postgres.port", "postgres.user", "postgres.password", "postgres.db_name",
		"postgres.ssl_mode", "postgres.max_open_conns", "postgres.max_idle_conns",
		"listener.channel", "listener.reconnect_seconds",
		"catalog.source", "catalog.dir", "catalog.debounce_ms",
		"matcher.strict_consistency", "matcher.include_install_time_asset_modules",
	} {
		_ = v.BindEnv(k)
	}
}

func validate(c *Config) error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.MaxOpenConns == 0 {
		c.Postgres.MaxOpenConns = 10
	}
	if c.Postgres.MaxIdleConns == 0 {
		c.Postgres.MaxIdleConns = 10
	}
	if c.Listener.ReconnectSeconds <= 0 {
		c.Listener.ReconnectSeconds = 5
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = SourcePostgres
	}
	if c.Catalog.DebounceMs <= 0 {
		c.Catalog.DebounceMs = 200
	}

	switch c.Catalog.Source {
	case SourcePostgres:
	case SourceFiles:
		if c.Catalog.Dir == "" {
			return fmt.Errorf("catalog.dir is required for source %q", SourceFiles)
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	return nil
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.DBName,
		c.Postgres.SSLMode,
	)
}

func (c Config) Backoff() time.Duration { return time.Duration(c.Listener.ReconnectSeconds) * time.Second }

func (c Config) Debounce() time.Duration { return time.Duration(c.Catalog.DebounceMs) * time.Millisecond }
