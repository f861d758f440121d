package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/keydashapp/keydash-sync/internal/domain"
)

// LeaderboardFilter narrows leaderboard listings.
type LeaderboardFilter struct {
	Category string
	Level    string
	Limit    int
}

// CreateLeaderboardEntry submits one entry; the returned record carries the
// server-assigned identifier and timestamp.
func (c *Client) CreateLeaderboardEntry(ctx context.Context, entry domain.LeaderboardEntry) (*domain.LeaderboardEntry, error) {
	return call[domain.LeaderboardEntry](c, ctx, http.MethodPost, apiPrefix+"/leaderboard", nil, entry)
}

// ListLeaderboardEntries fetches raw entries matching the filter.
func (c *Client) ListLeaderboardEntries(ctx context.Context, f LeaderboardFilter) ([]domain.LeaderboardEntry, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Level != "" {
		q.Set("level", f.Level)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	out, err := call[[]domain.LeaderboardEntry](c, ctx, http.MethodGet, apiPrefix+"/leaderboard", q, nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// AggregatedLeaderboard fetches the pre-aggregated per-player view and maps
// it to the canonical shape at this boundary.
func (c *Client) AggregatedLeaderboard(ctx context.Context, count int) ([]domain.AggregatedEntry, error) {
	q := url.Values{}
	if count > 0 {
		q.Set("limit", strconv.Itoa(count))
	}
	out, err := call[[]wireAggregatedRow](c, ctx, http.MethodGet, apiPrefix+"/leaderboard/aggregated", q, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.AggregatedEntry, 0, len(*out))
	for _, row := range *out {
		rows = append(rows, canonicalAggregated(row))
	}
	return rows, nil
}

// CreateSession submits one practice session.
func (c *Client) CreateSession(ctx context.Context, session domain.SessionRecord) (*domain.SessionRecord, error) {
	return call[domain.SessionRecord](c, ctx, http.MethodPost, apiPrefix+"/sessions", nil, session)
}

// ListSessions fetches an owner's sessions, newest first.
func (c *Client) ListSessions(ctx context.Context, owner string, limit int) ([]domain.SessionRecord, error) {
	q := url.Values{"email": {owner}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	out, err := call[[]domain.SessionRecord](c, ctx, http.MethodGet, apiPrefix+"/sessions", q, nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// CreateAnswer submits one answer record.
func (c *Client) CreateAnswer(ctx context.Context, answer domain.AnswerRecord) (*domain.AnswerRecord, error) {
	return call[domain.AnswerRecord](c, ctx, http.MethodPost, apiPrefix+"/answers", nil, answer)
}

// AnswerFilter narrows answer-history listings.
type AnswerFilter struct {
	Owner    string
	Category string
	Days     int // restrict to the last N days when > 0
}

// ListAnswers fetches an owner's answer history.
func (c *Client) ListAnswers(ctx context.Context, f AnswerFilter) ([]domain.AnswerRecord, error) {
	q := url.Values{"email": {f.Owner}}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Days > 0 {
		q.Set("days", strconv.Itoa(f.Days))
	}
	out, err := call[[]domain.AnswerRecord](c, ctx, http.MethodGet, apiPrefix+"/answers", q, nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetProfile fetches the profile for an owner key.
func (c *Client) GetProfile(ctx context.Context, email string) (*domain.UserProfile, error) {
	q := url.Values{"email": {email}}
	return call[domain.UserProfile](c, ctx, http.MethodGet, apiPrefix+"/profiles", q, nil)
}

// SaveProfile creates or replaces a profile.
func (c *Client) SaveProfile(ctx context.Context, profile domain.UserProfile) (*domain.UserProfile, error) {
	return call[domain.UserProfile](c, ctx, http.MethodPut, apiPrefix+"/profiles", nil, profile)
}

// RenameRequest carries a display-name change.
type RenameRequest struct {
	Email        string `json:"email"`
	NewName      string `json:"new_name"`
	PreviousName string `json:"previous_name"`
}

// UpdateDisplayName renames a profile; the server propagates the new name to
// the owner's historical leaderboard rows.
func (c *Client) UpdateDisplayName(ctx context.Context, req RenameRequest) error {
	_, err := call[struct{}](c, ctx, http.MethodPost, apiPrefix+"/profiles/rename", nil, req)
	return err
}

// CompleteChallengeRequest submits a daily-challenge attempt.
type CompleteChallengeRequest struct {
	Email       string   `json:"email"`
	Date        string   `json:"date"`
	Score       int      `json:"score"`
	Accuracy    float64  `json:"accuracy"`
	ShortcutIDs []string `json:"shortcut_ids,omitempty"`
}

// ChallengeResult is the server's response to a completion: the stored
// record, the streak after the transition, and badges unlocked by it.
type ChallengeResult struct {
	Record    domain.DailyChallengeRecord `json:"record"`
	Streak    domain.StreakRecord         `json:"streak"`
	NewBadges []string                    `json:"new_badges"`
}

// CompleteDailyChallenge records a completion server-side. The server runs
// the same streak transition the offline path does and is authoritative.
func (c *Client) CompleteDailyChallenge(ctx context.Context, req CompleteChallengeRequest) (*ChallengeResult, error) {
	return call[ChallengeResult](c, ctx, http.MethodPost, apiPrefix+"/challenges", nil, req)
}

// GetDailyChallenge fetches the completion record for one (owner, date).
func (c *Client) GetDailyChallenge(ctx context.Context, email, date string) (*domain.DailyChallengeRecord, error) {
	q := url.Values{"email": {email}, "date": {date}}
	return call[domain.DailyChallengeRecord](c, ctx, http.MethodGet, apiPrefix+"/challenges", q, nil)
}

// GetStreak fetches the owner's streak record.
func (c *Client) GetStreak(ctx context.Context, email string) (*domain.StreakRecord, error) {
	q := url.Values{"email": {email}}
	return call[domain.StreakRecord](c, ctx, http.MethodGet, apiPrefix+"/streaks", q, nil)
}
