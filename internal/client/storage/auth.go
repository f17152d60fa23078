package storage

import (
	"context"
)

// Ключи persisted state клиента
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// TokenStorage defines durable client-side storage of the token pair.
// Implementations must write and delete both tokens in one transaction.
type TokenStorage interface {
	// SaveTokens stores both tokens, replacing the previous pair
	SaveTokens(ctx context.Context, pair *TokenPair) error

	// GetTokens returns the stored pair.
	// Returns ErrTokensNotFound if neither token is stored.
	GetTokens(ctx context.Context) (*TokenPair, error)

	// DeleteTokens removes both tokens. Deleting an absent pair is not an error.
	DeleteTokens(ctx context.Context) error

	// Close releases the underlying resources
	Close() error
}

// TokenPair представляет пару access/refresh токенов
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Complete сообщает, что оба токена присутствуют
func (p *TokenPair) Complete() bool {
	return p != nil && p.AccessToken != "" && p.RefreshToken != ""
}
