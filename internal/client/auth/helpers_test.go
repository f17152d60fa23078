package auth

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// testNow - фиксированный момент для детерминированных проверок exp
var testNow = time.Unix(1_700_000_000, 0)

func fixedClock() time.Time {
	return testNow
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeToken создает подписанный HS256 токен с exp = testNow + ttl
func makeToken(t *testing.T, ttl time.Duration, userID any) string {
	t.Helper()

	claims := jwt.MapClaims{"exp": testNow.Add(ttl).Unix()}
	if userID != nil {
		claims["user_id"] = userID
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}
