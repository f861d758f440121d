package sqlite

import (
	"context"
	"fmt"

	"github.com/keydashapp/keydash-sync/internal/domain"
)

// leaderboardColumns is the ordered list of columns selected in leaderboard queries.
// Must match the scan order in scanLeaderboardEntry.
const leaderboardColumns = `id, local_id, name, email, score, accuracy,
	time_spent_ms, category, level, streak, created_at`

// scanLeaderboardEntry scans a sql.Row (or sql.Rows via its Scan method) into a domain.LeaderboardEntry.
func scanLeaderboardEntry(scanner interface{ Scan(dest ...any) error }) (*domain.LeaderboardEntry, error) {
	var e domain.LeaderboardEntry
	var createdAt string

	err := scanner.Scan(
		&e.ID,
		&e.LocalID,
		&e.Name,
		&e.Email,
		&e.Score,
		&e.Accuracy,
		&e.TimeSpentMs,
		&e.Category,
		&e.Level,
		&e.Streak,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// CreateLeaderboardEntry inserts a new leaderboard entry and assigns its ID.
func (s *Store) CreateLeaderboardEntry(ctx context.Context, entry *domain.LeaderboardEntry) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO leaderboard_entries (
			local_id, name, email, score, accuracy,
			time_spent_ms, category, level, streak, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.LocalID,
		entry.Name,
		entry.Email,
		entry.Score,
		entry.Accuracy,
		entry.TimeSpentMs,
		entry.Category,
		entry.Level,
		entry.Streak,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}

	entry.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("leaderboard entry id: %w", err)
	}
	return nil
}

// LeaderboardFilter narrows leaderboard listings.
type LeaderboardFilter struct {
	Category string
	Level    string
	Limit    int
}

// ListLeaderboardEntries returns entries matching the filter, highest score
// first. Ties keep insertion order.
func (s *Store) ListLeaderboardEntries(ctx context.Context, f LeaderboardFilter) ([]domain.LeaderboardEntry, error) {
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard_entries WHERE 1=1`
	var args []any
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Level != "" {
		query += ` AND level = ?`
		args = append(args, f.Level)
	}
	query += ` ORDER BY score DESC, id ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0)
	for rows.Next() {
		e, err := scanLeaderboardEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// AggregatedLeaderboard groups entries per display name: total score, game
// count, and mean accuracy, ranked by total score. Ties rank by whichever
// name entered the board first.
func (s *Store) AggregatedLeaderboard(ctx context.Context, limit int) ([]domain.AggregatedEntry, error) {
	query := `
		SELECT name, SUM(score), COUNT(*), AVG(accuracy)
		FROM leaderboard_entries
		GROUP BY name
		ORDER BY SUM(score) DESC, MIN(id) ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AggregatedEntry, 0)
	for rows.Next() {
		var row domain.AggregatedEntry
		if err := rows.Scan(&row.Name, &row.TotalScore, &row.GamesPlayed, &row.AvgAccuracy); err != nil {
			return nil, fmt.Errorf("scan aggregated row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// RenameLeaderboardEntries rewrites the denormalized display name on every
// entry carrying the previous name, matched case-insensitively.
// Returns the number of repaired rows.
func (s *Store) RenameLeaderboardEntries(ctx context.Context, previousName, newName string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leaderboard_entries SET name = ? WHERE name = ? COLLATE NOCASE`,
		newName, previousName,
	)
	if err != nil {
		return 0, fmt.Errorf("rename leaderboard entries: %w", err)
	}
	return res.RowsAffected()
}
