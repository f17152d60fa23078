package storage

import "errors"

// Common client storage errors
var (
	// ErrTokensNotFound indicates that no token pair is stored
	ErrTokensNotFound = errors.New("tokens not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidTokenPair indicates an attempt to save an incomplete pair
	ErrInvalidTokenPair = errors.New("token pair must contain both tokens")
)
