package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	service "github.com/okian/platformer/internal/app"
)

type levelRequest struct {
	ID        string `json:"id"`
	JSON      string `json:"json"`
	Thumbnail string `json:"thumbnail"`
}

func (s *Server) handleSaveLevel(w http.ResponseWriter, r *http.Request) {
	const op = "api.level.save"
	var in levelRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	lvl, err := s.deps.SaveLevel(r.Context(), claimsFrom(r.Context()).UserID, service.LevelInput{
		ID:        in.ID,
		JSON:      in.JSON,
		Thumbnail: in.Thumbnail,
	})
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, lvl)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	const op = "api.level.get"
	lvl, err := s.deps.Level(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, lvl)
}

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	const op = "api.level.list"
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(w, r, NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	levels, err := s.deps.Levels(r.Context(), q.Get("creator"), limit)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (s *Server) handleDeleteLevel(w http.ResponseWriter, r *http.Request) {
	const op = "api.level.delete"
	id := mux.Vars(r)["id"]
	if err := s.deps.DeleteLevel(r.Context(), claimsFrom(r.Context()).UserID, id); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	const op = "api.level.subscribe"
	u, err := s.deps.Subscribe(r.Context(), claimsFrom(r.Context()).UserID, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	const op = "api.level.unsubscribe"
	u, err := s.deps.Unsubscribe(r.Context(), claimsFrom(r.Context()).UserID, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}
