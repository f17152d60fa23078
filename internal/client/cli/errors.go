package cli

import "errors"

var (
	// ErrNotAuthenticated - команда требует сохраненной сессии
	ErrNotAuthenticated = errors.New("not authenticated, run 'carelink login' first")
	// ErrPasswordsDoNotMatch - пароль и подтверждение различаются
	ErrPasswordsDoNotMatch = errors.New("passwords do not match")
	// ErrSessionEnded - сессия завершена принудительно во время watch
	ErrSessionEnded = errors.New("session ended")
)
