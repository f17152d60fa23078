package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/carelink/internal/server/handlers"
)

// AuthMiddleware создает middleware для проверки Bearer access token.
// Любой отказ отвечает 401: клиент по нему обновляет токен и повторяет запрос.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "missing Authorization header")
				writeDetail(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.WarnContext(ctx, "invalid Authorization header format")
				writeDetail(w, "Unauthorized: invalid token format", http.StatusUnauthorized)
				return
			}

			// Валидируем токен
			claims, err := handlers.ValidateAccessToken(jwtConfig, parts[1])
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				writeDetail(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			logger.DebugContext(ctx, "user authenticated",
				slog.String("user_id", claims.UserID),
				slog.String("username", claims.Username))

			// Передаем запрос дальше с обновленным контекстом
			next.ServeHTTP(w, r.WithContext(handlers.WithUser(ctx, claims.UserID, claims.Username)))
		})
	}
}
