package auth

import "errors"

// Sentinel kinds for authentication errors.
var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrWrongPassword   = errors.New("wrong password")
	ErrPasswordTooLong = errors.New("password too long")
)
