package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/keydashapp/keydash-sync/internal/domain"
)

// answerColumns is the ordered list of columns selected in answer queries.
// Must match the scan order in scanAnswer.
const answerColumns = `id, local_id, email, shortcut_id, category, level,
	correct, time_taken_ms, created_at`

// scanAnswer scans a sql.Row (or sql.Rows via its Scan method) into a domain.AnswerRecord.
func scanAnswer(scanner interface{ Scan(dest ...any) error }) (*domain.AnswerRecord, error) {
	var a domain.AnswerRecord

	var (
		correct   int
		createdAt string
	)

	err := scanner.Scan(
		&a.ID,
		&a.LocalID,
		&a.Email,
		&a.ShortcutID,
		&a.Category,
		&a.Level,
		&correct,
		&a.TimeTakenMs,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.Correct = correct != 0

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// CreateAnswer inserts one answer record and assigns its ID.
func (s *Store) CreateAnswer(ctx context.Context, answer *domain.AnswerRecord) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (
			local_id, email, shortcut_id, category, level,
			correct, time_taken_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		answer.LocalID,
		answer.Email,
		answer.ShortcutID,
		answer.Category,
		answer.Level,
		boolToInt(answer.Correct),
		answer.TimeTakenMs,
		formatTime(answer.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}

	answer.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("answer id: %w", err)
	}
	return nil
}

// AnswerFilter narrows answer-history listings.
type AnswerFilter struct {
	Email    string
	Category string
	Days     int // restrict to the last N days when > 0
}

// ListAnswers returns an owner's answer history, oldest first.
func (s *Store) ListAnswers(ctx context.Context, f AnswerFilter) ([]domain.AnswerRecord, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE email = ?`
	args := []any{f.Email}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Days > 0 {
		query += ` AND created_at >= ?`
		args = append(args, formatTime(time.Now().AddDate(0, 0, -f.Days)))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	answers := make([]domain.AnswerRecord, 0)
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, *a)
	}
	return answers, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
