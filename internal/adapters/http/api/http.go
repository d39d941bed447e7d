// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/platformer/internal/app"
	"github.com/okian/platformer/internal/auth"
	"github.com/okian/platformer/internal/domain/model"
	"github.com/okian/platformer/pkg/logger"
	"github.com/okian/platformer/pkg/metrics"
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	Register(ctx context.Context, username, password string) (service.Session, error)
	Login(ctx context.Context, username, password string) (service.Session, error)
	Authenticate(ctx context.Context, raw string) (*auth.Claims, error)
	Logout(ctx context.Context, claims *auth.Claims)
	User(ctx context.Context, id string) (model.User, error)

	SaveLevel(ctx context.Context, userID string, in service.LevelInput) (model.Level, error)
	Level(ctx context.Context, id string) (model.Level, error)
	Levels(ctx context.Context, creator string, limit int) ([]model.Level, error)
	DeleteLevel(ctx context.Context, userID, levelID string) error
	Subscribe(ctx context.Context, userID, levelID string) (model.User, error)
	Unsubscribe(ctx context.Context, userID, levelID string) (model.User, error)

	SubmitScore(ctx context.Context, userID string, sub service.Submission) (model.User, error)
	Highscore(ctx context.Context, levelID string) (model.Leaderboard, error)

	Ping(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps       Dependencies
	apiPath    string
	cookieName string
	origins    map[string]struct{}
	logger     logger.Logger
	now        func() time.Time
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:       deps,
		apiPath:    "/api",
		cookieName: "platformer-token",
		origins:    map[string]struct{}{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.Use(s.requestContext, MetricsMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix(s.apiPath).Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/user", s.handleUser).Methods(http.MethodGet)
	api.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/level", s.handleSaveLevel).Methods(http.MethodPost)
	api.HandleFunc("/levels", s.handleListLevels).Methods(http.MethodGet)
	api.HandleFunc("/level/{id}", s.handleGetLevel).Methods(http.MethodGet)
	api.HandleFunc("/level/{id}", s.handleDeleteLevel).Methods(http.MethodDelete)
	api.HandleFunc("/level/{id}/subscribe", s.handleSubscribe).Methods(http.MethodPost)
	api.HandleFunc("/level/{id}/subscribe", s.handleUnsubscribe).Methods(http.MethodDelete)
	api.HandleFunc("/highscore", s.handleSubmitScore).Methods(http.MethodPost)
	api.HandleFunc("/highscore/{id}", s.handleGetHighscore).Methods(http.MethodGet)
}

// Handler returns r behind the CORS gate. CORS sits outside the router so
// preflight requests are answered before route matching.
func (s *Server) Handler(r *mux.Router) http.Handler {
	return s.cors(r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(status, err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err, logs server errors and writes the response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("code", code),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// maxBodyBytes bounds request bodies; level JSON is the largest payload.
const maxBodyBytes = 8 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	const op = "api.healthz"
	if err := s.deps.Ping(r.Context()); err != nil {
		s.logger.Warn(r.Context(), "health check failed", logger.Error(Wrap(op, err)))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
