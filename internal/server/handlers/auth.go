package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/iudanet/carelink/internal/crypto"
	"github.com/iudanet/carelink/internal/models"
	"github.com/iudanet/carelink/internal/server/storage"
	"github.com/iudanet/carelink/internal/validation"
	"github.com/iudanet/carelink/pkg/api"
)

// Тексты ошибок в формате DRF simplejwt
const (
	detailInvalidCredentials = "No active account found with the given credentials"
	detailInvalidRefresh     = "Token is invalid or expired"
	detailInternal           = "internal server error"
)

// AuthConfig настраивает выдачу токенов
type AuthConfig struct {
	JWT           JWTConfig
	GraceWindow   time.Duration
	RotateRefresh bool
}

// AuthHandler обрабатывает запросы /account/...
type AuthHandler struct {
	logger       *slog.Logger
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	grace        *graceCache
	refreshes    singleflight.Group
	now          func() time.Time
	cfg          AuthConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, cfg AuthConfig) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		grace:        newGraceCache(cfg.GraceWindow),
		now:          time.Now,
		cfg:          cfg,
	}
}

// Register обрабатывает POST /account/register/
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.String("username", req.Username), slog.Any("error", err))
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(w, h.logger, detailInternal, http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		CreatedAt:    h.now(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("username", req.Username))
			sendError(w, h.logger, "username already taken", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(w, h.logger, detailInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	sendJSON(w, h.logger, api.RegisterResponse{UserID: user.ID}, http.StatusCreated)
}

// Login обрабатывает POST /account/login/
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		sendError(w, h.logger, "username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("username", req.Username))
			sendError(w, h.logger, detailInvalidCredentials, http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(w, h.logger, detailInternal, http.StatusInternalServerError)
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("username", req.Username))
		sendError(w, h.logger, detailInvalidCredentials, http.StatusUnauthorized)
		return
	}

	pair, _, err := h.issuePair(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue tokens", slog.Any("error", err))
		sendError(w, h.logger, detailInternal, http.StatusInternalServerError)
		return
	}

	if err := h.tokenStorage.SaveRefreshToken(ctx, pair.record); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		sendError(w, h.logger, detailInternal, http.StatusInternalServerError)
		return
	}

	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, h.now()); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	sendJSON(w, h.logger, pair.response, http.StatusOK)
}

// refreshError - отказ refresh с HTTP статусом и detail для клиента
type refreshError struct {
	detail string
	status int
}

func (e *refreshError) Error() string {
	return e.detail
}

// Refresh обрабатывает POST /account/token/refresh/.
// Одновременные запросы с одним refresh token выполняются один раз и получают одну пару.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		sendError(w, h.logger, "refresh is required", http.StatusBadRequest)
		return
	}

	oldHash := crypto.HashToken(req.Refresh)

	res, err, shared := h.refreshes.Do(oldHash, func() (any, error) {
		return h.refresh(context.WithoutCancel(ctx), oldHash)
	})
	if err != nil {
		var rerr *refreshError
		if errors.As(err, &rerr) {
			sendError(w, h.logger, rerr.detail, rerr.status)
			return
		}
		sendError(w, h.logger, detailInternal, http.StatusInternalServerError)
		return
	}

	if shared {
		h.logger.DebugContext(ctx, "refresh shared with concurrent request")
	}

	sendJSON(w, h.logger, res.(api.TokenPairResponse), http.StatusOK)
}

// refresh проверяет refresh token и выдает новый access (и refresh при ротации)
func (h *AuthHandler) refresh(ctx context.Context, oldHash string) (api.TokenPairResponse, error) {
	now := h.now()
	invalid := &refreshError{detail: detailInvalidRefresh, status: http.StatusUnauthorized}
	internal := &refreshError{detail: detailInternal, status: http.StatusInternalServerError}

	stored, err := h.tokenStorage.GetRefreshToken(ctx, oldHash)
	if errors.Is(err, storage.ErrTokenNotFound) {
		// Дубликат запроса с только что ротированным токеном
		if cached, ok := h.grace.get(oldHash, now); ok {
			h.logger.InfoContext(ctx, "refresh served from grace cache")
			return cached, nil
		}
		h.logger.WarnContext(ctx, "refresh token not found")
		return api.TokenPairResponse{}, invalid
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		return api.TokenPairResponse{}, internal
	}

	if stored.Expired(now) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", stored.UserID))
		if err := h.tokenStorage.DeleteRefreshToken(ctx, oldHash); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "failed to delete expired refresh token", slog.Any("error", err))
		}
		return api.TokenPairResponse{}, invalid
	}

	user, err := h.userStorage.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return api.TokenPairResponse{}, invalid
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		return api.TokenPairResponse{}, internal
	}

	if !h.cfg.RotateRefresh {
		access, err := GenerateAccessToken(h.cfg.JWT, user.ID, user.Username, now)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
			return api.TokenPairResponse{}, internal
		}
		h.logger.InfoContext(ctx, "access token refreshed", slog.String("user_id", user.ID))
		return api.TokenPairResponse{Access: access}, nil
	}

	pair, newHash, err := h.issuePair(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue tokens", slog.Any("error", err))
		return api.TokenPairResponse{}, internal
	}

	if err := h.tokenStorage.RotateRefreshToken(ctx, oldHash, pair.record); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			// Другой процесс сервера успел ротировать токен первым
			if cached, ok := h.grace.get(oldHash, h.now()); ok {
				return cached, nil
			}
			return api.TokenPairResponse{}, invalid
		}
		h.logger.ErrorContext(ctx, "failed to rotate refresh token", slog.Any("error", err))
		return api.TokenPairResponse{}, internal
	}

	h.grace.put(oldHash, newHash, pair.response, now)

	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("user_id", user.ID))

	return pair.response, nil
}

// Logout обрабатывает POST /account/logout/: отзывает переданный refresh token.
// Неизвестный токен не ошибка: logout идемпотентен.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		sendError(w, h.logger, "refresh is required", http.StatusBadRequest)
		return
	}

	hash := crypto.HashToken(req.Refresh)
	h.grace.forget(hash)

	err := h.tokenStorage.DeleteRefreshToken(ctx, hash)
	switch {
	case errors.Is(err, storage.ErrTokenNotFound):
		h.logger.InfoContext(ctx, "logout with unknown refresh token")
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to delete refresh token", slog.Any("error", err))
		sendError(w, h.logger, detailInternal, http.StatusInternalServerError)
		return
	default:
		h.logger.InfoContext(ctx, "refresh token revoked")
	}

	w.WriteHeader(http.StatusNoContent)
}

// Profile обрабатывает GET /account/profile/ (за AuthMiddleware)
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(w, h.logger, "Authentication credentials were not provided.", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(w, h.logger, "User not found", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(w, h.logger, detailInternal, http.StatusInternalServerError)
		return
	}

	sendJSON(w, h.logger, api.ProfileResponse{UserID: user.ID, Username: user.Username}, http.StatusOK)
}

// PurgeGrace удаляет истекшие записи grace cache (janitor)
func (h *AuthHandler) PurgeGrace() int {
	return h.grace.purge(h.now())
}

type issuedPair struct {
	record   *models.RefreshToken
	response api.TokenPairResponse
}

// issuePair генерирует access и refresh token; refresh еще не сохранен
func (h *AuthHandler) issuePair(user *models.User) (*issuedPair, string, error) {
	now := h.now()

	access, err := GenerateAccessToken(h.cfg.JWT, user.ID, user.Username, now)
	if err != nil {
		return nil, "", err
	}

	refresh, err := GenerateRefreshToken()
	if err != nil {
		return nil, "", err
	}

	hash := crypto.HashToken(refresh)
	return &issuedPair{
		record: &models.RefreshToken{
			ID:        uuid.NewString(),
			TokenHash: hash,
			UserID:    user.ID,
			ExpiresAt: now.Add(h.cfg.JWT.RefreshTokenTTL),
			CreatedAt: now,
		},
		response: api.TokenPairResponse{Access: access, Refresh: refresh},
	}, hash, nil
}

// sendJSON отправляет JSON ответ
func sendJSON(w http.ResponseWriter, logger *slog.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой {"detail": ...}
func sendError(w http.ResponseWriter, logger *slog.Logger, detail string, statusCode int) {
	sendJSON(w, logger, api.ErrorResponse{Detail: detail}, statusCode)
}

// NotFound отвечает 404 в формате {"detail": ...}
func NotFound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sendError(w, logger, "Not found.", http.StatusNotFound)
	}
}
