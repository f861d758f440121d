package sqlite

import (
	"context"
	"fmt"

	"github.com/keydashapp/keydash-sync/internal/domain"
)

// sessionColumns is the ordered list of columns selected in session queries.
// Must match the scan order in scanSession.
const sessionColumns = `id, local_id, email, score, accuracy,
	duration_ms, answered, correct, category, level, streak, created_at`

// scanSession scans a sql.Row (or sql.Rows via its Scan method) into a domain.SessionRecord.
func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.SessionRecord, error) {
	var r domain.SessionRecord
	var createdAt string

	err := scanner.Scan(
		&r.ID,
		&r.LocalID,
		&r.Email,
		&r.Score,
		&r.Accuracy,
		&r.DurationMs,
		&r.Answered,
		&r.Correct,
		&r.Category,
		&r.Level,
		&r.Streak,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// CreateSession inserts a completed practice session and assigns its ID.
func (s *Store) CreateSession(ctx context.Context, session *domain.SessionRecord) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			local_id, email, score, accuracy,
			duration_ms, answered, correct, category, level, streak, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.LocalID,
		session.Email,
		session.Score,
		session.Accuracy,
		session.DurationMs,
		session.Answered,
		session.Correct,
		session.Category,
		session.Level,
		session.Streak,
		formatTime(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	session.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	return nil
}

// ListSessions returns an owner's sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, email string, limit int) ([]domain.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
		WHERE email = ? ORDER BY created_at DESC, id DESC`
	args := []any{email}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.SessionRecord, 0)
	for rows.Next() {
		r, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *r)
	}
	return sessions, rows.Err()
}
