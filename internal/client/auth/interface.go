package auth

import (
	"context"
	"net/http"

	"github.com/iudanet/carelink/pkg/api"
)

//go:generate moq -out backend_mock.go . Backend

// Backend is the part of the API client the gateway depends on.
// *api.Client implements it.
type Backend interface {
	// Login exchanges credentials for a token pair
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenPairResponse, error)

	// RefreshToken calls POST /account/token/refresh/
	// The Refresh field of the response is empty when the server does not rotate
	RefreshToken(ctx context.Context, refreshToken string) (*api.TokenPairResponse, error)

	// Logout revokes the refresh token on the server
	Logout(ctx context.Context, refreshToken string) error

	// Do sends a prepared request as-is
	Do(req *http.Request) (*http.Response, error)

	// URL resolves an API path against the base URL
	URL(path string) string
}

// LogoutHandler is the redirect side effect fired when the session ends.
// reason is nil for an explicit logout.
type LogoutHandler func(ctx context.Context, reason error)
