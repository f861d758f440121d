package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
	"github.com/keydashapp/keydash-sync/internal/streak"
)

// CompleteChallengeRequest carries a daily-challenge completion attempt.
type CompleteChallengeRequest struct {
	Email       string   `json:"email"`
	Date        string   `json:"date"`
	Score       int      `json:"score"`
	Accuracy    float64  `json:"accuracy"`
	ShortcutIDs []string `json:"shortcut_ids,omitempty"`
}

// ChallengeResult is the outcome of a completion attempt: the stored record,
// the streak after the transition, and any badges unlocked by it.
type ChallengeResult struct {
	Record    domain.DailyChallengeRecord `json:"record"`
	Streak    domain.StreakRecord         `json:"streak"`
	NewBadges []string                    `json:"new_badges"`
}

// CompleteDailyChallenge records a completion and advances the streak.
//
// One completion counts per owner and calendar date: a repeat attempt
// returns the stored record and current streak untouched. The streak
// transition itself is the shared day-completion function, so a client that
// completed the same day offline converges to the identical state when it
// reconnects.
func (s *ProgressService) CompleteDailyChallenge(ctx context.Context, req CompleteChallengeRequest) (*ChallengeResult, error) {
	if req.Email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if !domain.ValidDate(req.Date) {
		return nil, apperrors.Validationf("invalid date %q", req.Date)
	}
	if req.Accuracy < 0 || req.Accuracy > 100 {
		return nil, apperrors.Validation("accuracy must be between 0 and 100")
	}

	if existing, err := s.store.GetDailyChallenge(ctx, req.Email, req.Date); err == nil {
		current, err := s.GetStreak(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		return &ChallengeResult{Record: *existing, Streak: *current}, nil
	}

	prev, err := s.store.GetStreak(ctx, req.Email)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	updated, newBadges := streak.CompleteDay(prev, req.Email, req.Date, streak.Qualifies(req.Accuracy))

	record := domain.DailyChallengeRecord{
		Email:       req.Email,
		Date:        req.Date,
		Completed:   true,
		Score:       req.Score,
		Accuracy:    req.Accuracy,
		ShortcutIDs: req.ShortcutIDs,
		CompletedAt: time.Now(),
	}
	if err := s.store.CreateDailyChallenge(ctx, &record); err != nil {
		// Lost a same-day race: the first completion stands.
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return s.existingChallengeResult(ctx, req.Email, req.Date)
		}
		return nil, fmt.Errorf("complete daily challenge: %w", err)
	}

	if err := s.store.SaveStreak(ctx, &updated); err != nil {
		return nil, fmt.Errorf("complete daily challenge: %w", err)
	}

	s.logger.Info("daily challenge completed",
		"email", req.Email, "date", req.Date,
		"streak", updated.CurrentStreak, "new_badges", newBadges)

	return &ChallengeResult{Record: record, Streak: updated, NewBadges: newBadges}, nil
}

func (s *ProgressService) existingChallengeResult(ctx context.Context, email, date string) (*ChallengeResult, error) {
	existing, err := s.store.GetDailyChallenge(ctx, email, date)
	if err != nil {
		return nil, err
	}
	current, err := s.GetStreak(ctx, email)
	if err != nil {
		return nil, err
	}
	return &ChallengeResult{Record: *existing, Streak: *current}, nil
}

// GetStreak returns the owner's streak record. Owners that never completed a
// challenge get a zero record, not an error.
func (s *ProgressService) GetStreak(ctx context.Context, email string) (*domain.StreakRecord, error) {
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	record, err := s.store.GetStreak(ctx, email)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return &domain.StreakRecord{Email: email, Badges: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetDailyChallenge fetches the completion record for one (owner, date).
func (s *ProgressService) GetDailyChallenge(ctx context.Context, email, date string) (*domain.DailyChallengeRecord, error) {
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if !domain.ValidDate(date) {
		return nil, apperrors.Validationf("invalid date %q", date)
	}
	return s.store.GetDailyChallenge(ctx, email, date)
}
