package auth

import "errors"

var (
	// ErrMalformedToken indicates a token that cannot be decoded; such tokens are treated as expired
	ErrMalformedToken = errors.New("malformed token")

	// ErrNoRefreshToken indicates renewal without a stored refresh token; not retryable
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRenewalRejected indicates a failed refresh call; retryable up to the configured maximum
	ErrRenewalRejected = errors.New("token renewal rejected")

	// ErrRenewalExhausted indicates that the maximum number of renewal failures was reached and the session was purged
	ErrRenewalExhausted = errors.New("token renewal retries exhausted")

	// ErrRequestFailed wraps transport failures of authenticated requests
	ErrRequestFailed = errors.New("authenticated request failed")

	// ErrSessionChanged indicates a renewal that finished after logout or a new login; its result is discarded
	ErrSessionChanged = errors.New("session changed during renewal")
)
