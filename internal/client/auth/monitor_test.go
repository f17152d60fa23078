package auth

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carelink/internal/client/api"
	"github.com/iudanet/carelink/internal/client/storage"
	pkgapi "github.com/iudanet/carelink/pkg/api"
)

const testMonitorInterval = 10 * time.Millisecond

func TestMonitor_RenewsExpiringToken(t *testing.T) {
	newAccess := makeToken(t, time.Hour, 7)
	backend := &BackendMock{
		RefreshTokenFunc: refreshReturning(&pkgapi.TokenPairResponse{Access: newAccess, Refresh: "refresh-2"}, nil),
	}
	gw, store, _ := newTestGateway(t, backend, WithMonitorInterval(testMonitorInterval))
	seedTokens(t, store, makeToken(t, 30*time.Second, 7), "refresh-1")

	gw.Start(context.Background())
	assert.True(t, gw.MonitorRunning())

	require.Eventually(t, func() bool {
		pair := storedPair(t, store)
		return pair != nil && pair.AccessToken == newAccess
	}, time.Second, testMonitorInterval)

	// Новый токен не истекает, повторных renew нет
	time.Sleep(5 * testMonitorInterval)
	assert.Len(t, backend.RefreshTokenCalls(), 1)
}

func TestMonitor_IdleWhenTokenFresh(t *testing.T) {
	backend := &BackendMock{}
	gw, store, _ := newTestGateway(t, backend, WithMonitorInterval(testMonitorInterval))
	seedTokens(t, store, makeToken(t, time.Hour, 7), "refresh-1")

	gw.Start(context.Background())
	time.Sleep(5 * testMonitorInterval)

	assert.Empty(t, backend.RefreshTokenCalls())
	assert.True(t, gw.MonitorRunning())
}

func TestMonitor_IdleWithoutSession(t *testing.T) {
	backend := &BackendMock{}
	gw, _, rec := newTestGateway(t, backend, WithMonitorInterval(testMonitorInterval))

	gw.Start(context.Background())
	time.Sleep(5 * testMonitorInterval)

	assert.Empty(t, backend.RefreshTokenCalls())
	assert.Zero(t, rec.count())
}

// TestMonitor_StopsOnForcedLogoutAndRestartsOnLogin: принудительный logout останавливает монитор, Login запускает снова
func TestMonitor_StopsOnForcedLogoutAndRestartsOnLogin(t *testing.T) {
	var reject atomic.Bool
	reject.Store(true)
	newAccess := makeToken(t, time.Hour, 7)

	backend := &BackendMock{
		RefreshTokenFunc: func(ctx context.Context, refreshToken string) (*pkgapi.TokenPairResponse, error) {
			if reject.Load() {
				return nil, &api.StatusError{StatusCode: http.StatusBadRequest, Detail: "Token is blacklisted"}
			}
			return &pkgapi.TokenPairResponse{Access: newAccess}, nil
		},
	}
	gw, store, rec := newTestGateway(t, backend, WithMonitorInterval(testMonitorInterval))
	seedTokens(t, store, makeToken(t, -time.Minute, 7), "refresh-1")

	gw.Start(context.Background())

	require.Eventually(t, func() bool {
		return rec.count() == 1
	}, time.Second, testMonitorInterval)
	assert.ErrorIs(t, rec.last(), ErrRenewalExhausted)

	require.Eventually(t, func() bool {
		return !gw.MonitorRunning()
	}, time.Second, testMonitorInterval)
	assert.Nil(t, storedPair(t, store))
	assert.Len(t, backend.RefreshTokenCalls(), DefaultMaxRetries)

	// Следующий вход снова запускает монитор
	reject.Store(false)
	require.NoError(t, gw.Login(context.Background(), &storage.TokenPair{
		AccessToken:  makeToken(t, 30*time.Second, 7),
		RefreshToken: "refresh-3",
	}))
	assert.True(t, gw.MonitorRunning())

	require.Eventually(t, func() bool {
		pair := storedPair(t, store)
		return pair != nil && pair.AccessToken == newAccess
	}, time.Second, testMonitorInterval)
	assert.Equal(t, 1, rec.count())
}

func TestMonitor_LoginDoesNotStartWithoutStart(t *testing.T) {
	gw, _, _ := newTestGateway(t, &BackendMock{})

	require.NoError(t, gw.Login(context.Background(), &storage.TokenPair{
		AccessToken:  makeToken(t, time.Hour, 7),
		RefreshToken: "refresh-1",
	}))
	assert.False(t, gw.MonitorRunning())
}

func TestMonitor_StopIdempotent(t *testing.T) {
	gw, _, _ := newTestGateway(t, &BackendMock{}, WithMonitorInterval(testMonitorInterval))

	gw.Stop()
	gw.Start(context.Background())
	gw.Start(context.Background())
	assert.True(t, gw.MonitorRunning())

	gw.Stop()
	gw.Stop()
	assert.False(t, gw.MonitorRunning())
}

func TestMonitor_StopsWithParentContext(t *testing.T) {
	gw, _, _ := newTestGateway(t, &BackendMock{}, WithMonitorInterval(testMonitorInterval))

	ctx, cancel := context.WithCancel(context.Background())
	gw.Start(ctx)

	gw.mu.Lock()
	done := gw.monitorDone
	gw.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after parent context cancel")
	}
}
