package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/keydashapp/keydash-sync/internal/domain"
	"github.com/keydashapp/keydash-sync/internal/http/response"
	"github.com/keydashapp/keydash-sync/internal/service"
)

// handleGetProfile fetches the profile for an owner key.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.progress.GetProfile(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, profile, s.logger)
}

// handleSaveProfile creates or replaces a profile.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.UserProfile
	if err := json.UnmarshalRead(r.Body, &profile); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	saved, err := s.progress.SaveProfile(r.Context(), profile)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, saved, s.logger)
}

// handleRename updates a display name and repairs historical entries.
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req service.RenameRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.progress.Rename(r.Context(), req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, struct{}{}, s.logger)
}
