package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRenewThreshold - запас до истечения, при котором токен уже считается просроченным
const DefaultRenewThreshold = 120 * time.Second

// Claims представляет claims access/refresh токена бэкенда.
// UserID бывает числом или строкой, поэтому хранится как any.
type Claims struct {
	UserID any `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// UserIDString возвращает user_id в текстовом виде ("" если claim нет)
func (c *Claims) UserIDString() string {
	switch v := c.UserID.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Клиент не знает ключа подписи, поэтому claims разбираются без проверки подписи.
// Подлинность токена проверяет сервер.
var claimsParser = jwt.NewParser(jwt.WithJSONNumber())

// ParseClaims декодирует claims токена без проверки подписи.
// Токен без exp считается некорректным.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}

	claims := &Claims{}
	if _, _, err := claimsParser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}

	return claims, nil
}

// IsExpiring сообщает, что токен истекает в пределах threshold от текущего момента
func IsExpiring(token string, threshold time.Duration) bool {
	return isExpiringAt(token, threshold, time.Now())
}

// isExpiringAt: exp <= now + threshold (в целых секундах).
// Любая ошибка декодирования трактуется как "истек".
func isExpiringAt(token string, threshold time.Duration, now time.Time) bool {
	claims, err := ParseClaims(token)
	if err != nil {
		return true
	}
	return claims.ExpiresAt.Unix() <= now.Unix()+int64(threshold/time.Second)
}
