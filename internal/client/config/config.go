// Package config collects CLI settings from persistent flags, CARELINK_*
// environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iudanet/carelink/internal/client/auth"
)

// EnvPrefix - префикс переменных окружения
const EnvPrefix = "CARELINK"

// Config - настройки клиента
type Config struct {
	Server          string
	DBPath          string
	Passphrase      string
	LogLevel        string
	LogFormat       string
	RenewThreshold  time.Duration
	RenewTimeout    time.Duration
	MonitorInterval time.Duration
	MaxRetries      int
	Ephemeral       bool
}

// RegisterFlags добавляет persistent флаги клиента
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to config file (yaml, json or toml)")
	fs.String("server", "http://localhost:8000", "CareLink server URL")
	fs.String("db", "carelink-client.db", "path to local session database")
	fs.Bool("ephemeral", false, "keep the session in memory only")
	fs.String("passphrase", "", "encrypt stored tokens with this passphrase (prefer CARELINK_PASSPHRASE)")
	fs.Duration("renew-threshold", auth.DefaultRenewThreshold, "renew the access token this long before it expires")
	fs.Duration("renew-timeout", auth.DefaultRenewTimeout, "timeout of one refresh call")
	fs.Int("max-retries", auth.DefaultMaxRetries, "failed renewals before the session is ended")
	fs.Duration("monitor-interval", auth.DefaultMonitorInterval, "background token check period")
	fs.String("log-level", "warn", "log level: debug, info, warn, error")
	fs.String("log-format", "text", "log format: text or json")
}

// Load читает значения с учетом приоритета: флаг > env > файл > default.
// fs должен быть уже разобран.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server:          strings.TrimRight(v.GetString("server"), "/"),
		DBPath:          v.GetString("db"),
		Passphrase:      v.GetString("passphrase"),
		LogLevel:        v.GetString("log-level"),
		LogFormat:       v.GetString("log-format"),
		RenewThreshold:  v.GetDuration("renew-threshold"),
		RenewTimeout:    v.GetDuration("renew-timeout"),
		MonitorInterval: v.GetDuration("monitor-interval"),
		MaxRetries:      v.GetInt("max-retries"),
		Ephemeral:       v.GetBool("ephemeral"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения
func (c *Config) Validate() error {
	var errs []error

	if c.Server == "" {
		errs = append(errs, errors.New("server is required"))
	}
	if !c.Ephemeral && c.DBPath == "" {
		errs = append(errs, errors.New("db is required unless --ephemeral is set"))
	}
	if c.RenewThreshold < 0 {
		errs = append(errs, errors.New("renew-threshold must not be negative"))
	}
	if c.RenewTimeout <= 0 {
		errs = append(errs, errors.New("renew-timeout must be positive"))
	}
	if c.MonitorInterval <= 0 {
		errs = append(errs, errors.New("monitor-interval must be positive"))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, errors.New("max-retries must be at least 1"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log-format %q", c.LogFormat))
	}
	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log-level %q", c.LogLevel)
	}
	return level, nil
}

// NewLogger создает slog логгер по log-level и log-format
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := c.level()
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// GatewayOptions переводит настройки в опции gateway
func (c *Config) GatewayOptions() []auth.Option {
	return []auth.Option{
		auth.WithRenewThreshold(c.RenewThreshold),
		auth.WithRenewTimeout(c.RenewTimeout),
		auth.WithMaxRetries(c.MaxRetries),
		auth.WithMonitorInterval(c.MonitorInterval),
	}
}
