package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
)

// GetProfile fetches the profile for an owner key.
func (s *ProgressService) GetProfile(ctx context.Context, email string) (*domain.UserProfile, error) {
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	return s.store.GetProfile(ctx, email)
}

// SaveProfile creates or replaces a profile. The organization is derived
// from the email domain when the caller leaves it empty.
func (s *ProgressService) SaveProfile(ctx context.Context, profile domain.UserProfile) (*domain.UserProfile, error) {
	if profile.Email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if profile.DisplayName == "" {
		return nil, apperrors.Validation("display_name is required")
	}
	if profile.Organization == "" {
		profile.Organization = domain.OrganizationFromEmail(profile.Email)
	}

	now := time.Now()
	if existing, err := s.store.GetProfile(ctx, profile.Email); err == nil {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = now
	}
	profile.LastActiveAt = now

	if err := s.store.UpsertProfile(ctx, &profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return &profile, nil
}

// RenameRequest carries a display-name change.
type RenameRequest struct {
	Email        string `json:"email"`
	NewName      string `json:"new_name"`
	PreviousName string `json:"previous_name"`
}

// Rename updates the owner's display name and repairs the denormalized name
// on every historical leaderboard entry that carried the previous one.
func (s *ProgressService) Rename(ctx context.Context, req RenameRequest) error {
	if req.Email == "" {
		return apperrors.Validation("email is required")
	}
	if req.NewName == "" {
		return apperrors.Validation("new_name is required")
	}

	profile := domain.UserProfile{Email: req.Email, DisplayName: req.NewName}
	if _, err := s.SaveProfile(ctx, profile); err != nil {
		return err
	}

	if req.PreviousName == "" {
		return nil
	}
	repaired, err := s.store.RenameLeaderboardEntries(ctx, req.PreviousName, req.NewName)
	if err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	s.logger.Info("display name updated",
		"email", req.Email, "new_name", req.NewName, "repaired_rows", repaired)
	return nil
}
