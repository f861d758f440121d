package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
)

// streakColumns is the ordered list of columns selected in streak queries.
// Must match the scan order in scanStreak.
const streakColumns = `email, current_streak, longest_streak,
	last_completed_date, total_days_completed, badges`

// scanStreak scans a sql.Row (or sql.Rows via its Scan method) into a domain.StreakRecord.
func scanStreak(scanner interface{ Scan(dest ...any) error }) (*domain.StreakRecord, error) {
	var r domain.StreakRecord
	var badges string

	err := scanner.Scan(
		&r.Email,
		&r.CurrentStreak,
		&r.LongestStreak,
		&r.LastCompletedDate,
		&r.TotalDaysCompleted,
		&badges,
	)
	if err != nil {
		return nil, err
	}

	r.Badges = decodeStrings(badges)
	return &r, nil
}

// GetStreak fetches the streak record for an owner.
// Returns apperrors.ErrNotFound when the owner has never completed a challenge.
func (s *Store) GetStreak(ctx context.Context, email string) (*domain.StreakRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+streakColumns+` FROM streaks WHERE email = ?`, email)

	r, err := scanStreak(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("streak %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return r, nil
}

// SaveStreak creates or replaces the streak record for its owner.
func (s *Store) SaveStreak(ctx context.Context, record *domain.StreakRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO streaks (
			email, current_streak, longest_streak,
			last_completed_date, total_days_completed, badges
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_completed_date = excluded.last_completed_date,
			total_days_completed = excluded.total_days_completed,
			badges = excluded.badges`,
		record.Email,
		record.CurrentStreak,
		record.LongestStreak,
		record.LastCompletedDate,
		record.TotalDaysCompleted,
		encodeStrings(record.Badges),
	)
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

// challengeColumns is the ordered list of columns selected in daily-challenge queries.
// Must match the scan order in scanChallenge.
const challengeColumns = `id, email, date, completed, score, accuracy,
	shortcut_ids, completed_at`

// scanChallenge scans a sql.Row (or sql.Rows via its Scan method) into a domain.DailyChallengeRecord.
func scanChallenge(scanner interface{ Scan(dest ...any) error }) (*domain.DailyChallengeRecord, error) {
	var r domain.DailyChallengeRecord

	var (
		completed   int
		shortcutIDs string
		completedAt string
	)

	err := scanner.Scan(
		&r.ID,
		&r.Email,
		&r.Date,
		&completed,
		&r.Score,
		&r.Accuracy,
		&shortcutIDs,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Completed = completed != 0
	r.ShortcutIDs = decodeStrings(shortcutIDs)

	r.CompletedAt, err = parseTime(completedAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// GetDailyChallenge fetches the completion record for one (owner, date).
// Returns apperrors.ErrNotFound when the owner has not played that day.
func (s *Store) GetDailyChallenge(ctx context.Context, email, date string) (*domain.DailyChallengeRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM daily_challenges WHERE email = ? AND date = ?`,
		email, date)

	r, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("daily challenge %s/%s not found", email, date)
	}
	if err != nil {
		return nil, fmt.Errorf("get daily challenge: %w", err)
	}
	return r, nil
}

// CreateDailyChallenge inserts the completion record for one (owner, date)
// and assigns its ID. Returns apperrors.ErrAlreadyExists when the owner has
// already completed that date's challenge.
func (s *Store) CreateDailyChallenge(ctx context.Context, record *domain.DailyChallengeRecord) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_challenges (
			email, date, completed, score, accuracy, shortcut_ids, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.Email,
		record.Date,
		boolToInt(record.Completed),
		record.Score,
		record.Accuracy,
		encodeStrings(record.ShortcutIDs),
		formatTime(record.CompletedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.AlreadyExists("daily challenge already completed")
		}
		return fmt.Errorf("insert daily challenge: %w", err)
	}

	record.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("daily challenge id: %w", err)
	}
	return nil
}
