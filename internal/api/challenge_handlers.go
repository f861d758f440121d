package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/keydashapp/keydash-sync/internal/http/response"
	"github.com/keydashapp/keydash-sync/internal/service"
)

// handleCompleteChallenge records a daily-challenge completion and returns
// the resulting streak state.
func (s *Server) handleCompleteChallenge(w http.ResponseWriter, r *http.Request) {
	var req service.CompleteChallengeRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	result, err := s.progress.CompleteDailyChallenge(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleGetChallenge fetches the completion record for one (owner, date).
func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	record, err := s.progress.GetDailyChallenge(r.Context(), q.Get("email"), q.Get("date"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, record, s.logger)
}

// handleGetStreak fetches the streak record for an owner.
func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	record, err := s.progress.GetStreak(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, record, s.logger)
}
