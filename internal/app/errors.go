package service

import "errors"

// Sentinel kinds for service errors. The HTTP layer maps each to a status.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUserExists          = errors.New("username already taken")
	ErrUserNotFound        = errors.New("user not found")
	ErrWrongPassword       = errors.New("password is incorrect")
	ErrLevelNotFound       = errors.New("level not found")
	ErrLeaderboardNotFound = errors.New("leaderboard not found")
	ErrForbidden           = errors.New("not the level creator")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrConflict            = errors.New("too many concurrent updates")
)
