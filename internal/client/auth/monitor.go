package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iudanet/carelink/internal/client/storage"
)

// Start запускает фоновый монитор, который продлевает access token до истечения.
// Монитор останавливается при logout и снова запускается следующим Login.
func (g *Gateway) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.monitorEnabled = true
	g.monitorParent = ctx
	g.startMonitorLocked()
}

// Stop останавливает монитор и дожидается завершения его горутины
func (g *Gateway) Stop() {
	g.mu.Lock()
	g.monitorEnabled = false
	done := g.cancelMonitorLocked()
	g.mu.Unlock()

	if done != nil {
		<-done
	}
}

// MonitorRunning сообщает, работает ли фоновый монитор
func (g *Gateway) MonitorRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.monitorCancel != nil
}

func (g *Gateway) startMonitorLocked() {
	if g.monitorCancel != nil {
		return
	}
	parent := g.monitorParent
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	g.monitorCancel = cancel
	g.monitorDone = done

	go g.runMonitor(ctx, done)
}

// cancelMonitorLocked не ждет горутину: он вызывается и из самой горутины монитора
func (g *Gateway) cancelMonitorLocked() chan struct{} {
	if g.monitorCancel == nil {
		return nil
	}
	g.monitorCancel()
	done := g.monitorDone
	g.monitorCancel = nil
	g.monitorDone = nil
	return done
}

func (g *Gateway) runMonitor(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.monitorInterval)
	defer ticker.Stop()

	g.logger.DebugContext(ctx, "token monitor started", slog.Duration("interval", g.monitorInterval))

	for {
		select {
		case <-ctx.Done():
			g.logger.DebugContext(ctx, "token monitor stopped")
			return
		case <-ticker.C:
			g.checkToken(ctx)
		}
	}
}

// checkToken продлевает токен, если access token есть и истекает
func (g *Gateway) checkToken(ctx context.Context) {
	pair, err := g.store.GetTokens(ctx)
	if errors.Is(err, storage.ErrTokensNotFound) {
		return
	}
	if err != nil {
		g.logger.WarnContext(ctx, "token monitor failed to read tokens", slog.Any("error", err))
		return
	}
	if pair.AccessToken == "" || !g.IsExpiring(pair.AccessToken) {
		return
	}

	if _, err := g.Renew(ctx); err != nil && !errors.Is(err, context.Canceled) {
		g.logger.WarnContext(ctx, "background token renewal failed", slog.Any("error", err))
	}
}
