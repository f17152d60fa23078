package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/carelink/internal/crypto"
)

var keyEncryptionSalt = []byte("encryption_salt")

// EncryptionSalt возвращает соль для деривации ключа шифрования токенов.
// При первом вызове соль генерируется и сохраняется в БД.
func (s *Storage) EncryptionSalt(ctx context.Context) ([]byte, error) {
	var salt []byte

	err := s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if stored := bucket.Get(keyEncryptionSalt); stored != nil {
			salt = append([]byte(nil), stored...)
			return nil
		}

		// Соли еще нет, генерируем
		generated, err := crypto.GenerateSalt()
		if err != nil {
			return err
		}
		if err := bucket.Put(keyEncryptionSalt, generated); err != nil {
			return fmt.Errorf("failed to save encryption salt: %w", err)
		}
		salt = generated
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption salt: %w", err)
	}

	return salt, nil
}
