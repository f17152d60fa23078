package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/carelink/pkg/api"
)

// DefaultTimeout ограничивает любой HTTP запрос клиента
const DefaultTimeout = 30 * time.Second

// HeaderRequestID передается в каждом запросе для корреляции логов с сервером
const HeaderRequestID = "X-Request-ID"

// ErrUnauthorized matches any *StatusError with status 401.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError describes a non-2xx response from the backend.
type StatusError struct {
	Detail     string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is позволяет проверять 401 через errors.Is(err, ErrUnauthorized)
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client представляет HTTP клиент для взаимодействия с бэкендом CareLink
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient подменяет http.Client (тесты, кастомный transport)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout задает таймаут http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Authorization переносит сам net/http: только на тот же хост
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL возвращает абсолютный URL для пути API.
// Абсолютные URL возвращаются без изменений.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do выполняет подготовленный запрос как есть, без разбора ответа.
// Вызывающий закрывает resp.Body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	return c.httpClient.Do(req)
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	err := c.doRequest(ctx, http.MethodPost, api.PathRegister, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenPairResponse, error) {
	var resp api.TokenPairResponse
	err := c.doRequest(ctx, http.MethodPost, api.PathLogin, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	if resp.Access == "" || resp.Refresh == "" {
		return nil, fmt.Errorf("login response is missing tokens")
	}
	return &resp, nil
}

// RefreshToken обменивает refresh token на новую пару.
// Поле Refresh ответа пустое, если сервер не ротирует refresh token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*api.TokenPairResponse, error) {
	var resp api.TokenPairResponse
	err := c.doRequest(ctx, http.MethodPost, api.PathRefresh, api.RefreshRequest{Refresh: refreshToken}, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	if resp.Access == "" {
		return nil, fmt.Errorf("refresh response is missing access token")
	}
	return &resp, nil
}

// Logout отзывает refresh token на сервере
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, api.PathLogout, api.LogoutRequest{Refresh: refreshToken}, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// doRequest выполняет JSON запрос без авторизации
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return DecodeResponse(resp, result)
}

// DecodeResponse проверяет статус и декодирует JSON тело в result.
// Не-2xx ответы превращаются в *StatusError. Тело не закрывается.
func DecodeResponse(resp *http.Response, result any) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			statusErr.Detail = errResp.Detail
		} else {
			statusErr.Detail = strings.TrimSpace(string(respBody))
		}
		return statusErr
	}

	// Декодируем успешный ответ
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
