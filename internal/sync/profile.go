package sync

import (
	"context"
	"strings"
	"time"

	"github.com/keydashapp/keydash-sync/internal/cache"
	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
	"github.com/keydashapp/keydash-sync/internal/remote"
)

// GetProfile returns the owner's profile, remote-first. An unknown owner
// yields a skeleton profile rather than an error.
func (s *Service) GetProfile(ctx context.Context, email string) domain.UserProfile {
	if s.gateway.Healthy(ctx) {
		profile, err := s.gateway.GetProfile(ctx, email)
		if err == nil {
			s.mu.Lock()
			s.ensureLoaded(cache.CollectionProfiles)
			s.profiles[email] = *profile
			s.persist(cache.CollectionProfiles, s.profiles)
			s.mu.Unlock()
			return *profile
		}
		s.logger.Debug("profile read falling back to local tier", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(cache.CollectionProfiles)
	if profile, ok := s.profiles[email]; ok {
		return profile
	}
	return domain.UserProfile{
		Email:        email,
		Organization: domain.OrganizationFromEmail(email),
	}
}

// SaveProfileRequest carries a profile create-or-replace.
type SaveProfileRequest struct {
	Email        string `json:"email" validate:"required,email"`
	DisplayName  string `json:"display_name" validate:"required"`
	Organization string `json:"organization"`
}

// SaveProfile creates or replaces the owner's profile in both tiers.
// Organization defaults to the email domain when unset.
func (s *Service) SaveProfile(ctx context.Context, req SaveProfileRequest) (domain.UserProfile, error) {
	if err := s.validate.Validate(req); err != nil {
		return domain.UserProfile{}, err
	}

	now := time.Now()
	profile := domain.UserProfile{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		Organization: req.Organization,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if profile.Organization == "" {
		profile.Organization = domain.OrganizationFromEmail(req.Email)
	}

	s.mu.Lock()
	s.ensureLoaded(cache.CollectionProfiles)
	if existing, ok := s.profiles[req.Email]; ok {
		profile.CreatedAt = existing.CreatedAt
	}
	s.mu.Unlock()

	var rejection error
	if s.gateway.Healthy(ctx) {
		saved, err := s.gateway.SaveProfile(ctx, profile)
		switch {
		case err == nil:
			profile = *saved
		case apperrors.Is(err, apperrors.ErrRejected):
			rejection = err
		default:
			s.logger.Debug("profile write falling back to local tier", "error", err)
		}
	}

	s.mu.Lock()
	s.profiles[req.Email] = profile
	s.persist(cache.CollectionProfiles, s.profiles)
	s.mu.Unlock()

	return profile, rejection
}

// UpdateDisplayName renames the owner and repairs the denormalized name on
// every cached leaderboard entry whose name case-insensitively matches the
// previous one. The repair is mandatory on every rename; skipping it leaves
// stale names on historical rows.
func (s *Service) UpdateDisplayName(ctx context.Context, email, newName, previousName string) error {
	if newName == "" {
		return apperrors.Validation("display name is required")
	}

	var rejection error
	if s.gateway.Healthy(ctx) {
		err := s.gateway.UpdateDisplayName(ctx, remote.RenameRequest{
			Email:        email,
			NewName:      newName,
			PreviousName: previousName,
		})
		switch {
		case err == nil:
		case apperrors.Is(err, apperrors.ErrRejected):
			rejection = err
		default:
			s.logger.Debug("rename falling back to local tier", "error", err)
		}
	}

	s.mu.Lock()
	s.ensureLoaded(cache.CollectionProfiles)
	profile := s.profiles[email]
	profile.Email = email
	profile.DisplayName = newName
	if profile.Organization == "" {
		profile.Organization = domain.OrganizationFromEmail(email)
	}
	profile.LastActiveAt = time.Now()
	s.profiles[email] = profile
	s.persist(cache.CollectionProfiles, s.profiles)

	s.ensureLoaded(cache.CollectionLeaderboard)
	repaired := 0
	for i := range s.leaderboard {
		if strings.EqualFold(s.leaderboard[i].Name, previousName) {
			s.leaderboard[i].Name = newName
			repaired++
		}
	}
	if repaired > 0 {
		s.persist(cache.CollectionLeaderboard, s.leaderboard)
	}
	s.mu.Unlock()

	s.logger.Info("display name updated", "email", email, "repaired_rows", repaired)
	return rejection
}
