package auth

import (
	"context"
	"fmt"

	"github.com/iudanet/carelink/internal/client/storage"
	"github.com/iudanet/carelink/internal/crypto"
)

// EncryptedStore wraps a TokenStorage and seals every token with AES-256-GCM
// before it reaches the underlying storage.
type EncryptedStore struct {
	storage storage.TokenStorage
	key     []byte
}

// Compile-time check that EncryptedStore implements TokenStorage
var _ storage.TokenStorage = (*EncryptedStore)(nil)

// NewEncryptedStore создает слой шифрования.
// key должен быть ровно 32 байта (см. crypto.DeriveKey).
func NewEncryptedStore(s storage.TokenStorage, key []byte) (*EncryptedStore, error) {
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", crypto.KeySize, len(key))
	}
	return &EncryptedStore{
		storage: s,
		key:     key,
	}, nil
}

// SaveTokens шифрует оба токена и передает пару в хранилище
func (s *EncryptedStore) SaveTokens(ctx context.Context, pair *storage.TokenPair) error {
	if !pair.Complete() {
		return storage.ErrInvalidTokenPair
	}

	sealedAccess, err := crypto.SealString(pair.AccessToken, s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	sealedRefresh, err := crypto.SealString(pair.RefreshToken, s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	return s.storage.SaveTokens(ctx, &storage.TokenPair{
		AccessToken:  sealedAccess,
		RefreshToken: sealedRefresh,
	})
}

// GetTokens загружает пару и расшифровывает присутствующие токены
func (s *EncryptedStore) GetTokens(ctx context.Context) (*storage.TokenPair, error) {
	stored, err := s.storage.GetTokens(ctx)
	if err != nil {
		return nil, err
	}

	pair := &storage.TokenPair{}
	if stored.AccessToken != "" {
		if pair.AccessToken, err = crypto.OpenString(stored.AccessToken, s.key); err != nil {
			return nil, fmt.Errorf("failed to decrypt access token: %w", err)
		}
	}
	if stored.RefreshToken != "" {
		if pair.RefreshToken, err = crypto.OpenString(stored.RefreshToken, s.key); err != nil {
			return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
		}
	}

	return pair, nil
}

// DeleteTokens удаляет данные
func (s *EncryptedStore) DeleteTokens(ctx context.Context) error {
	return s.storage.DeleteTokens(ctx)
}

// Close закрывает нижележащее хранилище
func (s *EncryptedStore) Close() error {
	return s.storage.Close()
}
