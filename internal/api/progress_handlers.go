package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/keydashapp/keydash-sync/internal/domain"
	"github.com/keydashapp/keydash-sync/internal/http/response"
	"github.com/keydashapp/keydash-sync/internal/store/sqlite"
)

// queryInt parses an integer query parameter, 0 when absent or malformed.
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

// handleSubmitLeaderboardEntry stores one scored run.
func (s *Server) handleSubmitLeaderboardEntry(w http.ResponseWriter, r *http.Request) {
	var entry domain.LeaderboardEntry
	if err := json.UnmarshalRead(r.Body, &entry); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	created, err := s.progress.SubmitLeaderboardEntry(r.Context(), entry)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, created, s.logger)
}

// handleListLeaderboard lists raw entries, highest score first.
func (s *Server) handleListLeaderboard(w http.ResponseWriter, r *http.Request) {
	f := sqlite.LeaderboardFilter{
		Category: r.URL.Query().Get("category"),
		Level:    r.URL.Query().Get("level"),
		Limit:    queryInt(r, "limit"),
	}

	entries, err := s.progress.ListLeaderboard(r.Context(), f)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entries, s.logger)
}

// handleAggregatedLeaderboard lists the per-player view.
func (s *Server) handleAggregatedLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.progress.AggregatedLeaderboard(r.Context(), queryInt(r, "limit"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, rows, s.logger)
}

// handleRecordSession stores one practice session.
func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	var session domain.SessionRecord
	if err := json.UnmarshalRead(r.Body, &session); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	created, err := s.progress.RecordSession(r.Context(), session)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, created, s.logger)
}

// handleListSessions lists an owner's sessions, newest first.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.progress.ListSessions(r.Context(),
		r.URL.Query().Get("email"), queryInt(r, "limit"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, sessions, s.logger)
}

// handleRecordAnswer stores one answer record.
func (s *Server) handleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	var answer domain.AnswerRecord
	if err := json.UnmarshalRead(r.Body, &answer); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	created, err := s.progress.RecordAnswer(r.Context(), answer)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, created, s.logger)
}

// handleListAnswers lists an owner's answer history, oldest first.
func (s *Server) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	f := sqlite.AnswerFilter{
		Email:    r.URL.Query().Get("email"),
		Category: r.URL.Query().Get("category"),
		Days:     queryInt(r, "days"),
	}

	answers, err := s.progress.ListAnswers(r.Context(), f)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, answers, s.logger)
}
