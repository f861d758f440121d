package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `email, display_name, organization, created_at, last_active_at`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a domain.UserProfile.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.UserProfile, error) {
	var p domain.UserProfile

	var (
		createdAt  string
		lastActive string
	)

	err := scanner.Scan(
		&p.Email,
		&p.DisplayName,
		&p.Organization,
		&createdAt,
		&lastActive,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.LastActiveAt, err = parseTime(lastActive)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetProfile fetches the profile for an owner key.
// Returns apperrors.ErrNotFound when none exists.
func (s *Store) GetProfile(ctx context.Context, email string) (*domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("profile %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// UpsertProfile creates or replaces a profile, keyed by email.
func (s *Store) UpsertProfile(ctx context.Context, profile *domain.UserProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (email, display_name, organization, created_at, last_active_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			display_name = excluded.display_name,
			organization = excluded.organization,
			last_active_at = excluded.last_active_at`,
		profile.Email,
		profile.DisplayName,
		profile.Organization,
		formatTime(profile.CreatedAt),
		formatTime(profile.LastActiveAt),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
