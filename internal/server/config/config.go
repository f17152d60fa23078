// Package config loads dev backend settings from defaults, an optional
// config file, CARELINK_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix - префикс переменных окружения (CARELINK_JWT_SECRET и т.д.)
const EnvPrefix = "CARELINK"

// minSecretLen - минимальная длина HMAC секрета
const minSecretLen = 32

// Config holds runtime settings for the dev backend.
type Config struct {
	Addr            string
	DBPath          string
	JWTSecret       string
	LogLevel        string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	GraceWindow     time.Duration
	LoginWindow     time.Duration
	CleanupInterval time.Duration
	ShutdownTimeout time.Duration
	LoginRate       int
	Rotate          bool
}

// Flags регистрирует флаги сервера с дефолтными значениями
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("carelink-server", pflag.ContinueOnError)

	fs.String("config", "", "path to config file (yaml, json or toml)")
	fs.String("addr", ":8000", "HTTP listen address")
	fs.String("db", "carelink-server.db", "SQLite database path")
	fs.String("jwt-secret", "", "HMAC secret for access tokens (random per start if empty)")
	fs.Duration("access-ttl", 5*time.Minute, "access token lifetime")
	fs.Duration("refresh-ttl", 24*time.Hour, "refresh token lifetime")
	fs.Bool("rotate", true, "issue a new refresh token on every refresh")
	fs.Duration("grace-window", 15*time.Second, "how long a rotated pair is replayed for duplicate refresh requests")
	fs.Int("login-rate", 10, "login attempts per client IP per login window")
	fs.Duration("login-window", time.Minute, "login rate limit window")
	fs.Duration("cleanup-interval", 10*time.Minute, "expired refresh token cleanup period")
	fs.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Bool("version", false, "show version information")

	return fs
}

// Load разбирает args и собирает Config.
// Приоритет: флаги > переменные окружения > файл конфигурации > значения по умолчанию.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

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
		Addr:            v.GetString("addr"),
		DBPath:          v.GetString("db"),
		JWTSecret:       v.GetString("jwt-secret"),
		LogLevel:        v.GetString("log-level"),
		AccessTTL:       v.GetDuration("access-ttl"),
		RefreshTTL:      v.GetDuration("refresh-ttl"),
		GraceWindow:     v.GetDuration("grace-window"),
		LoginWindow:     v.GetDuration("login-window"),
		CleanupInterval: v.GetDuration("cleanup-interval"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LoginRate:       v.GetInt("login-rate"),
		Rotate:          v.GetBool("rotate"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db is required"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("jwt-secret must be at least %d bytes", minSecretLen))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("access-ttl must be positive"))
	}
	if c.RefreshTTL <= c.AccessTTL {
		errs = append(errs, errors.New("refresh-ttl must be longer than access-ttl"))
	}
	if c.GraceWindow < 0 {
		errs = append(errs, errors.New("grace-window must not be negative"))
	}
	if c.LoginRate < 1 || c.LoginWindow <= 0 {
		errs = append(errs, errors.New("login-rate and login-window must be positive"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("cleanup-interval must be positive"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLogLevel переводит строку уровня в slog.Level
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log-level %q", s)
	}
	return level, nil
}
