package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carelink/internal/client/storage"
)

func TestStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetTokens(ctx)
	assert.ErrorIs(t, err, storage.ErrTokensNotFound)

	pair := &storage.TokenPair{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, s.SaveTokens(ctx, pair))

	// Изменение исходной структуры не влияет на хранилище
	pair.AccessToken = "mutated"
	got, err := s.GetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", got.AccessToken)

	require.NoError(t, s.DeleteTokens(ctx))
	require.NoError(t, s.DeleteTokens(ctx))
	_, err = s.GetTokens(ctx)
	assert.ErrorIs(t, err, storage.ErrTokensNotFound)
}

func TestStorage_RejectsIncompletePair(t *testing.T) {
	s := New()
	err := s.SaveTokens(context.Background(), &storage.TokenPair{AccessToken: "a"})
	assert.ErrorIs(t, err, storage.ErrInvalidTokenPair)
}

func TestStorage_Closed(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Close())

	_, err := s.GetTokens(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, s.SaveTokens(ctx, &storage.TokenPair{AccessToken: "a", RefreshToken: "r"}), storage.ErrStorageClosed)
	assert.ErrorIs(t, s.DeleteTokens(ctx), storage.ErrStorageClosed)
}
