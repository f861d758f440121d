package sync

import (
	"context"
	"time"

	"github.com/keydashapp/keydash-sync/internal/cache"
	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
	"github.com/keydashapp/keydash-sync/internal/remote"
	"github.com/keydashapp/keydash-sync/internal/streak"
)

// ChallengeOutcome is what a daily-challenge completion produced: the stored
// record, the streak after the transition, and only the badges unlocked by
// this completion.
type ChallengeOutcome struct {
	Record    domain.DailyChallengeRecord `json:"record"`
	Streak    domain.StreakRecord         `json:"streak"`
	NewBadges []string                    `json:"new_badges"`
}

// CompleteDailyChallengeRequest carries one attempt at today's challenge.
type CompleteDailyChallengeRequest struct {
	Score       int      `json:"score" validate:"gte=0"`
	Accuracy    float64  `json:"accuracy" validate:"gte=0,lte=100"`
	ShortcutIDs []string `json:"shortcut_ids"`
}

// CompleteDailyChallenge records today's challenge completion and advances
// the streak.
//
// At most one completion exists per (owner, date): a second attempt on the
// same calendar day is a no-op that returns the existing record and current
// streak, with no new badges. When the backend is healthy the server runs
// the streak transition and its result is adopted wholesale; offline, the
// identical pure transition runs here. Either way the outcome is mirrored
// into the local cache.
func (s *Service) CompleteDailyChallenge(ctx context.Context, ownerEmail string, req CompleteDailyChallengeRequest) (ChallengeOutcome, error) {
	if err := s.validate.Validate(req); err != nil {
		return ChallengeOutcome{}, err
	}

	today := domain.Today()

	// Same-day dedup against the local record first: it is authoritative for
	// "did I already play today" even when the backend is up, because the
	// backend's record was mirrored here on the first completion.
	challengeKey := cache.OwnerKey(cache.CollectionDailyChallenge, ownerEmail)
	completions := make(map[string]domain.DailyChallengeRecord)
	s.cache.Get(challengeKey, &completions)
	if existing, ok := completions[today]; ok && existing.Completed {
		return ChallengeOutcome{
			Record:    existing,
			Streak:    s.localStreak(ownerEmail),
			NewBadges: nil,
		}, nil
	}

	if s.gateway.Healthy(ctx) {
		result, err := s.gateway.CompleteDailyChallenge(ctx, remote.CompleteChallengeRequest{
			Email:       ownerEmail,
			Date:        today,
			Score:       req.Score,
			Accuracy:    req.Accuracy,
			ShortcutIDs: req.ShortcutIDs,
		})
		switch {
		case err == nil:
			s.mirrorChallenge(ownerEmail, result.Record, result.Streak, completions)
			return ChallengeOutcome{Record: result.Record, Streak: result.Streak, NewBadges: result.NewBadges}, nil
		case apperrors.Is(err, apperrors.ErrRejected):
			// Keep the user's day: fall through to the local transition and
			// surface the rejection alongside it.
			outcome := s.completeLocally(ownerEmail, today, req, completions)
			return outcome, err
		default:
			s.logger.Debug("daily challenge falling back to local tier", "error", err)
		}
	}

	return s.completeLocally(ownerEmail, today, req, completions), nil
}

// completeLocally runs the shared streak transition against local state and
// persists both the completion record and the updated streak.
func (s *Service) completeLocally(ownerEmail, today string, req CompleteDailyChallengeRequest, completions map[string]domain.DailyChallengeRecord) ChallengeOutcome {
	record := domain.DailyChallengeRecord{
		Email:       ownerEmail,
		Date:        today,
		Completed:   true,
		Score:       req.Score,
		Accuracy:    req.Accuracy,
		ShortcutIDs: req.ShortcutIDs,
		CompletedAt: time.Now(),
	}

	var prev *domain.StreakRecord
	var stored domain.StreakRecord
	if s.cache.Get(cache.OwnerKey(cache.CollectionDailyStreak, ownerEmail), &stored) {
		prev = &stored
	}

	updated, newBadges := streak.CompleteDay(prev, ownerEmail, today, streak.Qualifies(req.Accuracy))

	s.mirrorChallenge(ownerEmail, record, updated, completions)
	return ChallengeOutcome{Record: record, Streak: updated, NewBadges: newBadges}
}

// mirrorChallenge writes a completion record and streak into the local cache.
func (s *Service) mirrorChallenge(ownerEmail string, record domain.DailyChallengeRecord, streakRec domain.StreakRecord, completions map[string]domain.DailyChallengeRecord) {
	completions[record.Date] = record
	s.persist(cache.OwnerKey(cache.CollectionDailyChallenge, ownerEmail), completions)
	s.persist(cache.OwnerKey(cache.CollectionDailyStreak, ownerEmail), streakRec)
}

// GetStreakStatus returns the owner's streak record, remote-first. An owner
// with no completions yet gets a zero record, never an error.
func (s *Service) GetStreakStatus(ctx context.Context, ownerEmail string) domain.StreakRecord {
	if s.gateway.Healthy(ctx) {
		rec, err := s.gateway.GetStreak(ctx, ownerEmail)
		if err == nil {
			s.persist(cache.OwnerKey(cache.CollectionDailyStreak, ownerEmail), *rec)
			return *rec
		}
		s.logger.Debug("streak read falling back to local tier", "error", err)
	}

	return s.localStreak(ownerEmail)
}

// localStreak reads the cached streak record, zero-valued when absent.
func (s *Service) localStreak(ownerEmail string) domain.StreakRecord {
	var rec domain.StreakRecord
	if !s.cache.Get(cache.OwnerKey(cache.CollectionDailyStreak, ownerEmail), &rec) {
		rec = domain.StreakRecord{Email: ownerEmail, Badges: []string{}}
	}
	return rec
}

// GetDailyChallenge returns the completion record for a given date, if any.
func (s *Service) GetDailyChallenge(ctx context.Context, ownerEmail, date string) (domain.DailyChallengeRecord, bool) {
	if s.gateway.Healthy(ctx) {
		rec, err := s.gateway.GetDailyChallenge(ctx, ownerEmail, date)
		if err == nil && rec.Date != "" {
			return *rec, true
		}
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			s.logger.Debug("daily challenge read falling back to local tier", "error", err)
		}
	}

	completions := make(map[string]domain.DailyChallengeRecord)
	s.cache.Get(cache.OwnerKey(cache.CollectionDailyChallenge, ownerEmail), &completions)
	rec, ok := completions[date]
	return rec, ok
}
