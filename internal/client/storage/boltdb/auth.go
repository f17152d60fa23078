package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/carelink/internal/client/storage"
)

var (
	keyAccessToken  = []byte(storage.KeyAccessToken)
	keyRefreshToken = []byte(storage.KeyRefreshToken)
)

// SaveTokens stores both tokens in a single transaction
func (s *Storage) SaveTokens(ctx context.Context, pair *storage.TokenPair) error {
	if !pair.Complete() {
		return storage.ErrInvalidTokenPair
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		if err := bucket.Put(keyAccessToken, []byte(pair.AccessToken)); err != nil {
			return fmt.Errorf("failed to save access token: %w", err)
		}
		if err := bucket.Put(keyRefreshToken, []byte(pair.RefreshToken)); err != nil {
			return fmt.Errorf("failed to save refresh token: %w", err)
		}

		return nil
	})
}

// GetTokens retrieves the stored token pair
func (s *Storage) GetTokens(ctx context.Context) (*storage.TokenPair, error) {
	var pair *storage.TokenPair

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		access := bucket.Get(keyAccessToken)
		refresh := bucket.Get(keyRefreshToken)
		if access == nil && refresh == nil {
			return storage.ErrTokensNotFound
		}

		// Значения из bbolt валидны только внутри транзакции, копируем через string()
		pair = &storage.TokenPair{
			AccessToken:  string(access),
			RefreshToken: string(refresh),
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return pair, nil
}

// DeleteTokens removes both tokens in a single transaction
func (s *Storage) DeleteTokens(ctx context.Context) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		if err := bucket.Delete(keyAccessToken); err != nil {
			return fmt.Errorf("failed to delete access token: %w", err)
		}
		if err := bucket.Delete(keyRefreshToken); err != nil {
			return fmt.Errorf("failed to delete refresh token: %w", err)
		}

		return nil
	})
}
