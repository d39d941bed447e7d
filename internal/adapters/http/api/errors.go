package api

import (
	"errors"
	"net/http"

	service "github.com/okian/platformer/internal/app"
	"github.com/okian/platformer/internal/auth"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrMissingToken = errors.New("A token is required for authentication") //nolint:staticcheck // client-facing text
)

// Error carries the handler op, an optional kind and the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op
	}
}

func (e *Error) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind raised in op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps an error to its status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrMissingToken):
		return http.StatusForbidden, "token_required"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, service.ErrWrongPassword):
		return http.StatusUnauthorized, "wrong_password"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, service.ErrLevelNotFound):
		return http.StatusNotFound, "level_not_found"
	case errors.Is(err, service.ErrLeaderboardNotFound):
		return http.StatusNotFound, "leaderboard_not_found"
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, "user_exists"
	case errors.Is(err, service.ErrConflict):
		return http.StatusInternalServerError, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// publicMessage is what the client sees: the cause for client errors, the
// status text for server errors.
func publicMessage(status int, err error) string {
	if status >= http.StatusInternalServerError {
		if errors.Is(err, service.ErrConflict) {
			return service.ErrConflict.Error()
		}
		return http.StatusText(status)
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return e.Err.Error()
		}
		if e.Kind != nil {
			return e.Kind.Error()
		}
	}
	return err.Error()
}
