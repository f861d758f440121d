package domain

import "time"

// RecordKind discriminates the persisted progress record types.
type RecordKind string

// RecordKind constants for the three progress resources.
const (
	KindLeaderboardEntry RecordKind = "leaderboard_entry"
	KindSessionRecord    RecordKind = "session_record"
	KindAnswerRecord     RecordKind = "answer_record"
)

// LeaderboardEntry is a single scored run submitted to the leaderboard.
//
// ID is server-assigned and zero until the record has been accepted by the
// remote tier. LocalID is client-generated at creation time and stable for
// the record's lifetime; when a record later syncs it is superseded by the
// server ID, never merged into it.
type LeaderboardEntry struct {
	ID      int64  `json:"id,omitempty"`
	LocalID string `json:"local_id,omitempty"`

	Name  string `json:"name"`
	Email string `json:"email,omitempty"`

	Score       int     `json:"score"`
	Accuracy    float64 `json:"accuracy"`
	TimeSpentMs int64   `json:"time_spent_ms"`

	Category string `json:"category,omitempty"`
	Level    string `json:"level,omitempty"`

	// Streak captures the owner's current streak at the time of the run.
	Streak int `json:"streak"`

	CreatedAt time.Time `json:"created_at"`
}

// SessionRecord is one completed practice session.
type SessionRecord struct {
	ID      int64  `json:"id,omitempty"`
	LocalID string `json:"local_id,omitempty"`

	Email string `json:"email,omitempty"`

	Score      int     `json:"score"`
	Accuracy   float64 `json:"accuracy"`
	DurationMs int64   `json:"duration_ms"`
	Answered   int     `json:"answered"`
	Correct    int     `json:"correct"`

	Category string `json:"category,omitempty"`
	Level    string `json:"level,omitempty"`
	Streak   int    `json:"streak"`

	CreatedAt time.Time `json:"created_at"`
}

// AnswerRecord is the atomic record of a single challenge answer.
// Answer history is append-only; analytics are derived from it.
type AnswerRecord struct {
	ID      int64  `json:"id,omitempty"`
	LocalID string `json:"local_id,omitempty"`

	Email string `json:"email,omitempty"`

	ShortcutID  string `json:"shortcut_id"`
	Category    string `json:"category"`
	Level       string `json:"level,omitempty"`
	Correct     bool   `json:"correct"`
	TimeTakenMs int64  `json:"time_taken_ms"`

	CreatedAt time.Time `json:"created_at"`
}

// AggregatedEntry is one row of the aggregated leaderboard view:
// all of a player's entries grouped by display name.
type AggregatedEntry struct {
	Name        string  `json:"name"`
	TotalScore  int     `json:"total_score"`
	GamesPlayed int     `json:"games_played"`
	AvgAccuracy float64 `json:"avg_accuracy"`
}

// CategoryStats summarizes answer history for one category.
type CategoryStats struct {
	Category      string   `json:"category"`
	Correct       int      `json:"correct"`
	Total         int      `json:"total"`
	Accuracy      int      `json:"accuracy"` // round(100*correct/total), 0 when total == 0
	WeakShortcuts []string `json:"weak_shortcuts"`
}

// WeakShortcut is a shortcut the owner keeps missing, for the practice-focus view.
type WeakShortcut struct {
	ShortcutID string `json:"shortcut_id"`
	Category   string `json:"category"`
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Accuracy   int    `json:"accuracy"`
}
