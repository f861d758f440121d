// Package sync implements the progress synchronization service.
//
// Every operation follows the remote-first-with-local-backup policy: when the
// gateway reports the backend healthy, writes go through it first and adopt
// server-assigned identifiers; regardless of the remote outcome the record is
// mirrored into the local durable cache, so the local tier always holds the
// user's record of truth. Reads prefer the remote tier and degrade silently
// to the local one - no public operation ever surfaces an offline condition.
package sync

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/keydashapp/keydash-sync/internal/cache"
	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
	"github.com/keydashapp/keydash-sync/internal/id"
	"github.com/keydashapp/keydash-sync/internal/remote"
	"github.com/keydashapp/keydash-sync/internal/validation"
)

// Hard caps per local collection. Lowest-ranked (or oldest, for answers)
// records beyond the cap are discarded on every write.
const (
	maxLeaderboardEntries = 100
	maxSessionRecords     = 50
	maxAnswerRecords      = 500
)

// Service orchestrates the two storage tiers and owns the in-process cache.
// Construct one per process and inject it; the cache is not shared module
// state.
type Service struct {
	cache    *cache.Cache
	gateway  *remote.Client
	logger   *slog.Logger
	validate *validation.Validator

	// The calling UI serializes user actions, but Go schedules goroutines
	// preemptively, so every read-modify-write on the in-memory collections
	// holds the mutex.
	mu          sync.Mutex
	leaderboard []domain.LeaderboardEntry
	sessions    []domain.SessionRecord
	answers     []domain.AnswerRecord
	profiles    map[string]domain.UserProfile
	loaded      map[string]bool
}

// New creates the sync service on top of a local cache and a gateway.
func New(localCache *cache.Cache, gateway *remote.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		cache:    localCache,
		gateway:  gateway,
		logger:   logger,
		validate: validation.New(),
		profiles: make(map[string]domain.UserProfile),
		loaded:   make(map[string]bool),
	}
}

// Reprobe forces a fresh backend liveness check, for callers that want to
// detect recovery from an offline state.
func (s *Service) Reprobe(ctx context.Context) bool {
	return s.gateway.Reprobe(ctx)
}

// ensureLoaded pulls a collection from the durable cache into memory once.
// Callers must hold s.mu.
func (s *Service) ensureLoaded(collection string) {
	if s.loaded[collection] {
		return
	}
	switch collection {
	case cache.CollectionLeaderboard:
		s.cache.Get(collection, &s.leaderboard)
	case cache.CollectionSessions:
		s.cache.Get(collection, &s.sessions)
	case cache.CollectionAnswerHistory:
		s.cache.Get(collection, &s.answers)
	case cache.CollectionProfiles:
		s.cache.Get(collection, &s.profiles)
		if s.profiles == nil {
			s.profiles = make(map[string]domain.UserProfile)
		}
	}
	s.loaded[collection] = true
}

// persist mirrors an in-memory collection back to the durable cache.
// Local write failures are logged and swallowed: the in-memory copy still
// serves this session, and the next successful write re-mirrors everything.
func (s *Service) persist(collection string, v any) {
	if err := s.cache.Put(collection, v); err != nil {
		s.logger.Warn("local mirror failed", "collection", collection, "error", err)
	}
}

// SubmitLeaderboardEntryRequest carries a new leaderboard submission.
type SubmitLeaderboardEntryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Score       int     `json:"score" validate:"gte=0"`
	Accuracy    float64 `json:"accuracy" validate:"gte=0,lte=100"`
	TimeSpentMs int64   `json:"time_spent_ms" validate:"gte=0"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Streak      int     `json:"streak" validate:"gte=0"`
}

// SubmitLeaderboardEntry records one scored run.
//
// Validation failures return before any storage attempt. Otherwise the write
// succeeds from the caller's point of view as long as the local tier took it:
// a remote rejection is returned alongside the stored record so the UI can
// surface the server's message, and an offline backend is not an error at
// all.
func (s *Service) SubmitLeaderboardEntry(ctx context.Context, req SubmitLeaderboardEntryRequest, ownerEmail string) (domain.LeaderboardEntry, error) {
	if err := s.validate.Validate(req); err != nil {
		return domain.LeaderboardEntry{}, err
	}

	entry := domain.LeaderboardEntry{
		LocalID:     id.MustGenerate("lb"),
		Name:        req.Name,
		Email:       ownerEmail,
		Score:       req.Score,
		Accuracy:    req.Accuracy,
		TimeSpentMs: req.TimeSpentMs,
		Category:    req.Category,
		Level:       req.Level,
		Streak:      req.Streak,
		CreatedAt:   time.Now(),
	}

	var rejection error
	if s.gateway.Healthy(ctx) {
		created, err := s.gateway.CreateLeaderboardEntry(ctx, entry)
		switch {
		case err == nil:
			entry.ID = created.ID
			entry.CreatedAt = created.CreatedAt
		case apperrors.Is(err, apperrors.ErrRejected):
			rejection = err
		default:
			s.logger.Debug("leaderboard write falling back to local tier", "error", err)
		}
	}

	s.mu.Lock()
	s.ensureLoaded(cache.CollectionLeaderboard)
	s.leaderboard = append(s.leaderboard, entry)
	slices.SortStableFunc(s.leaderboard, func(a, b domain.LeaderboardEntry) int {
		return b.Score - a.Score
	})
	if len(s.leaderboard) > maxLeaderboardEntries {
		s.leaderboard = s.leaderboard[:maxLeaderboardEntries]
	}
	s.persist(cache.CollectionLeaderboard, s.leaderboard)
	s.mu.Unlock()

	return entry, rejection
}

// RecordSessionRequest carries one finished practice session.
type RecordSessionRequest struct {
	Score      int     `json:"score" validate:"gte=0"`
	Accuracy   float64 `json:"accuracy" validate:"gte=0,lte=100"`
	DurationMs int64   `json:"duration_ms" validate:"gte=0"`
	Answered   int     `json:"answered" validate:"gte=0"`
	Correct    int     `json:"correct" validate:"gte=0"`
	Category   string  `json:"category"`
	Level      string  `json:"level"`
	Streak     int     `json:"streak" validate:"gte=0"`
}

// RecordSession stores a completed session in both tiers.
func (s *Service) RecordSession(ctx context.Context, req RecordSessionRequest, ownerEmail string) (domain.SessionRecord, error) {
	if err := s.validate.Validate(req); err != nil {
		return domain.SessionRecord{}, err
	}

	session := domain.SessionRecord{
		LocalID:    id.MustGenerate("ses"),
		Email:      ownerEmail,
		Score:      req.Score,
		Accuracy:   req.Accuracy,
		DurationMs: req.DurationMs,
		Answered:   req.Answered,
		Correct:    req.Correct,
		Category:   req.Category,
		Level:      req.Level,
		Streak:     req.Streak,
		CreatedAt:  time.Now(),
	}

	var rejection error
	if s.gateway.Healthy(ctx) {
		created, err := s.gateway.CreateSession(ctx, session)
		switch {
		case err == nil:
			session.ID = created.ID
			session.CreatedAt = created.CreatedAt
		case apperrors.Is(err, apperrors.ErrRejected):
			rejection = err
		default:
			s.logger.Debug("session write falling back to local tier", "error", err)
		}
	}

	s.mu.Lock()
	s.ensureLoaded(cache.CollectionSessions)
	s.sessions = append(s.sessions, session)
	slices.SortStableFunc(s.sessions, func(a, b domain.SessionRecord) int {
		return b.Score - a.Score
	})
	if len(s.sessions) > maxSessionRecords {
		s.sessions = s.sessions[:maxSessionRecords]
	}
	s.persist(cache.CollectionSessions, s.sessions)
	s.mu.Unlock()

	return session, rejection
}

// RecordAnswerRequest carries one challenge answer.
type RecordAnswerRequest struct {
	ShortcutID  string `json:"shortcut_id" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Level       string `json:"level"`
	Correct     bool   `json:"correct"`
	TimeTakenMs int64  `json:"time_taken_ms" validate:"gte=0"`
}

// RecordAnswer appends one answer to the owner's history. Answer history is
// bounded by recency: once the cap is reached the oldest answers fall off.
func (s *Service) RecordAnswer(ctx context.Context, req RecordAnswerRequest, ownerEmail string) (domain.AnswerRecord, error) {
	if err := s.validate.Validate(req); err != nil {
		return domain.AnswerRecord{}, err
	}

	answer := domain.AnswerRecord{
		LocalID:     id.MustGenerate("ans"),
		Email:       ownerEmail,
		ShortcutID:  req.ShortcutID,
		Category:    req.Category,
		Level:       req.Level,
		Correct:     req.Correct,
		TimeTakenMs: req.TimeTakenMs,
		CreatedAt:   time.Now(),
	}

	var rejection error
	if s.gateway.Healthy(ctx) {
		created, err := s.gateway.CreateAnswer(ctx, answer)
		switch {
		case err == nil:
			answer.ID = created.ID
			answer.CreatedAt = created.CreatedAt
		case apperrors.Is(err, apperrors.ErrRejected):
			rejection = err
		default:
			s.logger.Debug("answer write falling back to local tier", "error", err)
		}
	}

	s.mu.Lock()
	s.ensureLoaded(cache.CollectionAnswerHistory)
	s.answers = append(s.answers, answer)
	if len(s.answers) > maxAnswerRecords {
		s.answers = s.answers[len(s.answers)-maxAnswerRecords:]
	}
	s.persist(cache.CollectionAnswerHistory, s.answers)
	s.mu.Unlock()

	return answer, rejection
}

// LocalLeaderboard returns a copy of the locally cached leaderboard,
// highest score first.
func (s *Service) LocalLeaderboard() []domain.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(cache.CollectionLeaderboard)
	return slices.Clone(s.leaderboard)
}
