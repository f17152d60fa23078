package api

// Пути auth API бэкенда CareLink
const (
	PathRegister = "/account/register/"
	PathLogin    = "/account/login/"
	PathRefresh  = "/account/token/refresh/"
	PathLogout   = "/account/logout/"
	PathProfile  = "/account/profile/"
	PathHealth   = "/health"
)

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username string `json:"username"` // username пользователя
	Password string `json:"password"` // пароль в открытом виде (только по TLS)
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	UserID string `json:"user_id"` // UUID пользователя
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPairResponse представляет ответ login и refresh
// Refresh может отсутствовать, если сервер не ротирует refresh token
type TokenPairResponse struct {
	Access  string `json:"access"`            // JWT access token
	Refresh string `json:"refresh,omitempty"` // refresh token (опционально при refresh)
}

// RefreshRequest представляет тело POST /account/token/refresh/
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// LogoutRequest представляет тело POST /account/logout/
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// ProfileResponse представляет ответ GET /account/profile/
type ProfileResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Detail string `json:"detail"` // описание ошибки
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
