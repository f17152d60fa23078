// Package auth implements the client session gateway: it owns the token pair,
// renews the access token through the refresh endpoint, coalesces concurrent
// renewals into a single call and signs outgoing requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/carelink/internal/client/storage"
	"github.com/iudanet/carelink/pkg/api"
)

const (
	// DefaultRenewTimeout ограничивает один вызов refresh endpoint
	DefaultRenewTimeout = 10 * time.Second
	// DefaultMaxRetries - число подряд неудачных renew до принудительного logout
	DefaultMaxRetries = 3
	// DefaultMonitorInterval - период фоновой проверки токена
	DefaultMonitorInterval = 60 * time.Second

	renewKey = "renew"
)

// Gateway is the single authority over the stored token pair.
// It is safe for concurrent use.
type Gateway struct {
	backend  Backend
	store    storage.TokenStorage
	logger   *slog.Logger
	onLogout LogoutHandler
	now      func() time.Time

	monitorParent context.Context
	monitorCancel context.CancelFunc
	monitorDone   chan struct{}

	renewals singleflight.Group

	renewThreshold  time.Duration
	renewTimeout    time.Duration
	monitorInterval time.Duration
	maxRetries      int

	mu             sync.Mutex
	failures       int
	monitorEnabled bool

	// sessionMu сериализует запись пары в хранилище; epoch растет при каждом
	// Login и завершении сессии. Порядок блокировок: sessionMu, затем mu.
	sessionMu sync.Mutex
	epoch     uint64
}

// Option настраивает Gateway
type Option func(*Gateway)

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithLogoutHandler задает side effect при завершении сессии (редирект на вход)
func WithLogoutHandler(h LogoutHandler) Option {
	return func(g *Gateway) {
		g.onLogout = h
	}
}

// WithRenewThreshold задает запас до истечения access token
func WithRenewThreshold(d time.Duration) Option {
	return func(g *Gateway) {
		g.renewThreshold = d
	}
}

// WithRenewTimeout задает таймаут одного renew
func WithRenewTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.renewTimeout = d
	}
}

// WithMaxRetries задает число неудачных renew до принудительного logout
func WithMaxRetries(n int) Option {
	return func(g *Gateway) {
		g.maxRetries = n
	}
}

// WithMonitorInterval задает период фонового монитора
func WithMonitorInterval(d time.Duration) Option {
	return func(g *Gateway) {
		g.monitorInterval = d
	}
}

// WithClock подменяет источник времени (тесты)
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// NewGateway создает gateway поверх API клиента и хранилища токенов.
// Фоновый монитор не запускается до вызова Start.
func NewGateway(backend Backend, store storage.TokenStorage, opts ...Option) *Gateway {
	g := &Gateway{
		backend:         backend,
		store:           store,
		logger:          slog.Default(),
		now:             time.Now,
		renewThreshold:  DefaultRenewThreshold,
		renewTimeout:    DefaultRenewTimeout,
		maxRetries:      DefaultMaxRetries,
		monitorInterval: DefaultMonitorInterval,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.maxRetries < 1 {
		g.maxRetries = 1
	}
	// time.NewTicker паникует на неположительном интервале
	if g.monitorInterval <= 0 {
		g.monitorInterval = DefaultMonitorInterval
	}
	if g.renewTimeout <= 0 {
		g.renewTimeout = DefaultRenewTimeout
	}
	return g
}

// IsExpiring проверяет токен относительно порога gateway и его часов
func (g *Gateway) IsExpiring(token string) bool {
	return isExpiringAt(token, g.renewThreshold, g.now())
}

// GetValidAccessToken возвращает сохраненный access token, если он не истекает,
// иначе выполняет Renew.
func (g *Gateway) GetValidAccessToken(ctx context.Context) (string, error) {
	pair, err := g.store.GetTokens(ctx)
	if err != nil && !errors.Is(err, storage.ErrTokensNotFound) {
		return "", fmt.Errorf("failed to read tokens: %w", err)
	}
	if err == nil && pair.AccessToken != "" && !g.IsExpiring(pair.AccessToken) {
		return pair.AccessToken, nil
	}

	return g.Renew(ctx)
}

// Renew обновляет access token через refresh token.
// Одновременные вызовы разделяют один сетевой запрос и получают один результат.
// Сам запрос не зависит от отмены ctx конкретного вызывающего: тот лишь перестает ждать.
func (g *Gateway) Renew(ctx context.Context) (string, error) {
	ch := g.renewals.DoChan(renewKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.renewTimeout)
		defer cancel()
		return g.renew(rctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// renew выполняется не более чем в одном экземпляре (singleflight).
// К моменту возврата хранилище уже в финальном состоянии.
// Результат renew, начатого до Logout или Login, отбрасывается.
func (g *Gateway) renew(ctx context.Context) (string, error) {
	g.sessionMu.Lock()
	epoch := g.epoch
	pair, err := g.store.GetTokens(ctx)
	g.sessionMu.Unlock()

	if errors.Is(err, storage.ErrTokensNotFound) || (err == nil && pair.RefreshToken == "") {
		return "", ErrNoRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read tokens: %w", err)
	}

	resp, err := g.backend.RefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		if g.sessionEpoch() != epoch {
			return "", g.sessionChanged(ctx)
		}
		return "", g.renewalFailed(ctx, epoch, err)
	}

	renewed := &storage.TokenPair{
		AccessToken:  resp.Access,
		RefreshToken: pair.RefreshToken,
	}
	// Сервер может не ротировать refresh token
	if resp.Refresh != "" {
		renewed.RefreshToken = resp.Refresh
	}

	g.sessionMu.Lock()
	if g.epoch != epoch {
		g.sessionMu.Unlock()
		return "", g.sessionChanged(ctx)
	}
	saveErr := g.store.SaveTokens(ctx, renewed)
	g.sessionMu.Unlock()

	if saveErr != nil {
		return "", g.renewalFailed(ctx, epoch, fmt.Errorf("failed to save renewed tokens: %w", saveErr))
	}

	g.mu.Lock()
	g.failures = 0
	g.mu.Unlock()

	g.logger.InfoContext(ctx, "access token renewed", slog.Bool("refresh_rotated", resp.Refresh != ""))

	return renewed.AccessToken, nil
}

func (g *Gateway) sessionEpoch() uint64 {
	g.sessionMu.Lock()
	defer g.sessionMu.Unlock()
	return g.epoch
}

// sessionChanged: сессия сменилась во время запроса, результат не сохраняется
// и не учитывается в счетчике неудач новой сессии.
func (g *Gateway) sessionChanged(ctx context.Context) error {
	g.logger.InfoContext(ctx, "session changed during renewal, result discarded")
	return ErrSessionChanged
}

// renewalFailed учитывает неудачу в общем счетчике и при исчерпании завершает сессию
func (g *Gateway) renewalFailed(ctx context.Context, epoch uint64, cause error) error {
	g.mu.Lock()
	g.failures++
	attempt := g.failures
	exhausted := attempt >= g.maxRetries
	if exhausted {
		g.failures = 0
	}
	g.mu.Unlock()

	if !exhausted {
		g.logger.WarnContext(ctx, "token renewal failed",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", g.maxRetries),
			slog.Any("error", cause))
		return fmt.Errorf("%w (attempt %d/%d): %w", ErrRenewalRejected, attempt, g.maxRetries, cause)
	}

	g.logger.ErrorContext(ctx, "token renewal retries exhausted, ending session",
		slog.Int("max_retries", g.maxRetries),
		slog.Any("error", cause))

	if err := g.endSessionAt(ctx, ErrRenewalExhausted, &epoch); err != nil {
		if errors.Is(err, ErrSessionChanged) {
			return g.sessionChanged(ctx)
		}
		g.logger.ErrorContext(ctx, "failed to purge tokens", slog.Any("error", err))
	}

	return fmt.Errorf("%w: %w: %w", ErrRenewalExhausted, ErrRenewalRejected, cause)
}

// endSession удаляет токены, останавливает монитор и вызывает logout handler.
// Handler вызывается только если сессия действительно была.
func (g *Gateway) endSession(ctx context.Context, reason error) error {
	return g.endSessionAt(ctx, reason, nil)
}

// endSessionAt с заданным epoch завершает сессию, только если она не сменилась
func (g *Gateway) endSessionAt(ctx context.Context, reason error, epoch *uint64) error {
	g.sessionMu.Lock()
	if epoch != nil && *epoch != g.epoch {
		g.sessionMu.Unlock()
		return ErrSessionChanged
	}
	_, getErr := g.store.GetTokens(ctx)
	hadSession := getErr == nil

	if err := g.store.DeleteTokens(ctx); err != nil {
		g.sessionMu.Unlock()
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	g.epoch++
	g.sessionMu.Unlock()

	g.mu.Lock()
	g.failures = 0
	g.cancelMonitorLocked()
	g.mu.Unlock()

	if hadSession && g.onLogout != nil {
		g.onLogout(ctx, reason)
	}

	return nil
}

// Login сохраняет пару, полученную при внешнем логине, и перезапускает монитор
func (g *Gateway) Login(ctx context.Context, pair *storage.TokenPair) error {
	if !pair.Complete() {
		return storage.ErrInvalidTokenPair
	}
	g.sessionMu.Lock()
	if err := g.store.SaveTokens(ctx, pair); err != nil {
		g.sessionMu.Unlock()
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	g.epoch++
	g.sessionMu.Unlock()

	g.mu.Lock()
	g.failures = 0
	if g.monitorEnabled {
		g.startMonitorLocked()
	}
	g.mu.Unlock()

	return nil
}

// LoginWithPassword выполняет POST /account/login/ и сохраняет полученную пару
func (g *Gateway) LoginWithPassword(ctx context.Context, username, password string) error {
	resp, err := g.backend.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	if err := g.Login(ctx, &storage.TokenPair{AccessToken: resp.Access, RefreshToken: resp.Refresh}); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "logged in", slog.String("username", username))
	return nil
}

// Logout отзывает refresh token на сервере (best effort) и удаляет локальную сессию
func (g *Gateway) Logout(ctx context.Context) error {
	pair, err := g.store.GetTokens(ctx)
	if err != nil {
		// Если данных нет, просто логируем и продолжаем
		g.logger.DebugContext(ctx, "no tokens found during logout", slog.Any("error", err))
	} else if pair.RefreshToken != "" {
		if logoutErr := g.backend.Logout(ctx, pair.RefreshToken); logoutErr != nil {
			// Не прерываем процесс, если сервер недоступен
			g.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", logoutErr))
		}
	}

	// Всегда удаляем локальные данные
	return g.endSession(ctx, nil)
}

// IsAuthenticated сообщает, что сохранены оба токена
func (g *Gateway) IsAuthenticated(ctx context.Context) (bool, error) {
	pair, err := g.store.GetTokens(ctx)
	if errors.Is(err, storage.ErrTokensNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return pair.Complete(), nil
}

// TokenDebugInfo - диагностическая сводка по сохраненным токенам
type TokenDebugInfo struct {
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time // нулевое значение, если refresh token не JWT
	UserID           string
	Authenticated    bool
	AccessExpiring   bool
}

// TokenDebugInfo декодирует сохраненные токены без побочных эффектов
func (g *Gateway) TokenDebugInfo(ctx context.Context) (*TokenDebugInfo, error) {
	info := &TokenDebugInfo{}

	pair, err := g.store.GetTokens(ctx)
	if errors.Is(err, storage.ErrTokensNotFound) {
		return info, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tokens: %w", err)
	}

	info.Authenticated = pair.Complete()
	info.AccessExpiring = g.IsExpiring(pair.AccessToken)

	if claims, err := ParseClaims(pair.AccessToken); err == nil {
		info.AccessExpiresAt = claims.ExpiresAt.Time
		info.UserID = claims.UserIDString()
	}
	if claims, err := ParseClaims(pair.RefreshToken); err == nil {
		info.RefreshExpiresAt = claims.ExpiresAt.Time
	}

	return info, nil
}
