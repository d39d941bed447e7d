package api

import (
	"net/http"
	"time"

	service "github.com/okian/platformer/internal/app"
	"github.com/okian/platformer/internal/domain/model"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionResponse is the user record plus the freshly issued token.
type sessionResponse struct {
	model.User
	Token           string    `json:"token"`
	TokenExpiration time.Time `json:"tokenExpiration"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	sess, err := s.deps.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	s.writeSession(w, http.StatusCreated, sess)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	sess, err := s.deps.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) writeSession(w http.ResponseWriter, status int, sess service.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    sess.Token.Value,
		Path:     "/",
		Expires:  sess.Token.ExpiresAt,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	writeJSON(w, status, sessionResponse{
		User:            sess.User,
		Token:           sess.Token.Value,
		TokenExpiration: sess.Token.ExpiresAt,
	})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.user"
	u, err := s.deps.User(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.deps.Logout(r.Context(), claimsFrom(r.Context()))
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  s.now().Add(-time.Hour),
		MaxAge:   -1,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
