// Package service implements the backend business logic on top of the
// relational store. Handlers stay thin; every rule lives here.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
	"github.com/keydashapp/keydash-sync/internal/store/sqlite"
)

// Listing bounds. Callers may ask for fewer rows, never more.
const (
	maxLeaderboardRows = 100
	maxSessionRows     = 50
	maxAnswerRows      = 500
)

// ProgressService handles leaderboard, session, and answer submissions.
type ProgressService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewProgressService creates a new progress service.
func NewProgressService(store *sqlite.Store, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		store:  store,
		logger: logger,
	}
}

// SubmitLeaderboardEntry stores one scored run and assigns its ID.
func (s *ProgressService) SubmitLeaderboardEntry(ctx context.Context, entry domain.LeaderboardEntry) (*domain.LeaderboardEntry, error) {
	if entry.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if entry.Score < 0 {
		return nil, apperrors.Validation("score must not be negative")
	}
	if entry.Accuracy < 0 || entry.Accuracy > 100 {
		return nil, apperrors.Validation("accuracy must be between 0 and 100")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := s.store.CreateLeaderboardEntry(ctx, &entry); err != nil {
		return nil, fmt.Errorf("submit leaderboard entry: %w", err)
	}

	s.logger.Debug("leaderboard entry stored",
		"id", entry.ID, "name", entry.Name, "score", entry.Score)
	return &entry, nil
}

// ListLeaderboard returns entries matching the filter, highest score first.
func (s *ProgressService) ListLeaderboard(ctx context.Context, f sqlite.LeaderboardFilter) ([]domain.LeaderboardEntry, error) {
	if f.Limit <= 0 || f.Limit > maxLeaderboardRows {
		f.Limit = maxLeaderboardRows
	}
	return s.store.ListLeaderboardEntries(ctx, f)
}

// AggregatedLeaderboard returns the per-player leaderboard view.
func (s *ProgressService) AggregatedLeaderboard(ctx context.Context, limit int) ([]domain.AggregatedEntry, error) {
	if limit <= 0 || limit > maxLeaderboardRows {
		limit = maxLeaderboardRows
	}
	return s.store.AggregatedLeaderboard(ctx, limit)
}

// RecordSession stores one completed practice session and assigns its ID.
func (s *ProgressService) RecordSession(ctx context.Context, session domain.SessionRecord) (*domain.SessionRecord, error) {
	if session.Email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if session.Score < 0 {
		return nil, apperrors.Validation("score must not be negative")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	if err := s.store.CreateSession(ctx, &session); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	return &session, nil
}

// ListSessions returns an owner's sessions, newest first.
func (s *ProgressService) ListSessions(ctx context.Context, email string, limit int) ([]domain.SessionRecord, error) {
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if limit <= 0 || limit > maxSessionRows {
		limit = maxSessionRows
	}
	return s.store.ListSessions(ctx, email, limit)
}

// RecordAnswer stores one answer record and assigns its ID.
func (s *ProgressService) RecordAnswer(ctx context.Context, answer domain.AnswerRecord) (*domain.AnswerRecord, error) {
	if answer.Email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if answer.ShortcutID == "" {
		return nil, apperrors.Validation("shortcut_id is required")
	}
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now()
	}

	if err := s.store.CreateAnswer(ctx, &answer); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}
	return &answer, nil
}

// ListAnswers returns an owner's answer history, oldest first.
func (s *ProgressService) ListAnswers(ctx context.Context, f sqlite.AnswerFilter) ([]domain.AnswerRecord, error) {
	if f.Email == "" {
		return nil, apperrors.Validation("email is required")
	}
	answers, err := s.store.ListAnswers(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(answers) > maxAnswerRows {
		answers = answers[len(answers)-maxAnswerRows:]
	}
	return answers, nil
}
