package api

import (
	"errors"
	"math"
	"net/http"

	"github.com/gorilla/mux"

	service "github.com/okian/platformer/internal/app"
)

// scoreRequest uses pointers so absent fields are distinguishable from zero.
type scoreRequest struct {
	ID     *string  `json:"id"`
	Points *float64 `json:"points"`
	Time   *float64 `json:"time"`
}

var (
	errMissingScoreFields = errors.New("id, points and time are required")
	errPointsNotIntegral  = errors.New("points must be a whole number")
)

func (in scoreRequest) submission() (service.Submission, error) {
	if in.ID == nil || *in.ID == "" || in.Points == nil || in.Time == nil {
		return service.Submission{}, errMissingScoreFields
	}
	p := *in.Points
	if math.IsNaN(p) || math.IsInf(p, 0) || p != math.Trunc(p) ||
		p > math.MaxInt64 || p < math.MinInt64 {
		return service.Submission{}, errPointsNotIntegral
	}
	return service.Submission{LevelID: *in.ID, Points: int64(p), Time: *in.Time}, nil
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.highscore.submit"
	var in scoreRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	sub, err := in.submission()
	if err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	u, err := s.deps.SubmitScore(r.Context(), claimsFrom(r.Context()).UserID, sub)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleGetHighscore(w http.ResponseWriter, r *http.Request) {
	const op = "api.highscore.get"
	lb, err := s.deps.Highscore(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, lb)
}
