// Package server wires the CareLink dev backend: storage, auth handlers,
// middleware, the HTTP server and the expired token janitor.
package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/iudanet/carelink/internal/server/config"
	"github.com/iudanet/carelink/internal/server/handlers"
	"github.com/iudanet/carelink/internal/server/middleware"
	"github.com/iudanet/carelink/internal/server/storage/sqlite"
	"github.com/iudanet/carelink/pkg/api"
)

// App - собранный dev backend
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *sqlite.Storage
	auth    *handlers.AuthHandler
	limiter *middleware.RateLimiter
	handler http.Handler
}

// NewApp открывает хранилище и собирает HTTP handler.
// Пустой JWT секрет заменяется случайным: выданные токены не переживут рестарт.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		logger.WarnContext(ctx, "jwt-secret not set, using a random secret for this run")
	}

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	jwtConfig := handlers.JWTConfig{
		Secret:          secret,
		AccessTokenTTL:  cfg.AccessTTL,
		RefreshTokenTTL: cfg.RefreshTTL,
	}

	app := &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		auth: handlers.NewAuthHandler(logger, store, store, handlers.AuthConfig{
			JWT:           jwtConfig,
			GraceWindow:   cfg.GraceWindow,
			RotateRefresh: cfg.Rotate,
		}),
		limiter: middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginWindow, logger),
	}
	app.handler = app.routes(jwtConfig, handlers.NewHealthHandler(logger, store, version))

	return app, nil
}

func (a *App) routes(jwtConfig handlers.JWTConfig, health *handlers.HealthHandler) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.AuthMiddleware(a.logger, jwtConfig)
	limitLogin := middleware.RateLimitMiddleware(a.limiter)

	mux.HandleFunc("POST "+api.PathRegister+"{$}", a.auth.Register)
	mux.Handle("POST "+api.PathLogin+"{$}", limitLogin(http.HandlerFunc(a.auth.Login)))
	mux.HandleFunc("POST "+api.PathRefresh+"{$}", a.auth.Refresh)
	mux.HandleFunc("POST "+api.PathLogout+"{$}", a.auth.Logout)
	mux.Handle("GET "+api.PathProfile+"{$}", requireAuth(http.HandlerFunc(a.auth.Profile)))
	mux.HandleFunc("GET "+api.PathHealth, health.Health)
	mux.Handle("/", handlers.NotFound(a.logger))

	var h http.Handler = mux
	h = middleware.LoggingWithSkip(a.logger, []string{api.PathHealth})(h)
	h = middleware.RecoveryMiddleware(a.logger)(h)
	return h
}

// Handler возвращает корневой HTTP handler (тесты)
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run слушает cfg.Addr до отмены ctx
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx, затем плавно останавливает сервер
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	var wg sync.WaitGroup
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.runJanitor(janitorCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "server listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		a.logger.InfoContext(ctx, "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	stopJanitor()
	wg.Wait()

	return serveErr
}

// runJanitor периодически удаляет истекшие refresh токены и записи grace cache
func (a *App) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.cleanup(ctx)
		}
	}
}

func (a *App) cleanup(ctx context.Context) {
	removed, err := a.store.DeleteExpiredTokens(ctx, time.Now())
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to delete expired refresh tokens", slog.Any("error", err))
	}
	purged := a.auth.PurgeGrace()

	if removed > 0 || purged > 0 {
		a.logger.InfoContext(ctx, "expired sessions cleaned up",
			slog.Int("refresh_tokens", removed),
			slog.Int("grace_entries", purged))
	}
}

// Close освобождает rate limiter и хранилище
func (a *App) Close() error {
	a.limiter.Stop()
	return a.store.Close()
}
