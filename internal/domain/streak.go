package domain

import (
	"slices"
	"time"
)

// StreakRecord tracks consecutive-day daily-challenge completion for one owner.
//
// Invariants, enforced by the streak engine on every transition:
// LongestStreak >= CurrentStreak, TotalDaysCompleted never decreases, and
// Badges only ever grows.
type StreakRecord struct {
	Email         string `json:"email"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`

	// LastCompletedDate is the calendar date (YYYY-MM-DD) of the most recent
	// qualifying completion, empty until the first one.
	LastCompletedDate string `json:"last_completed_date,omitempty"`

	TotalDaysCompleted int      `json:"total_days_completed"`
	Badges             []string `json:"badges"`
}

// HasBadge reports whether the badge has already been unlocked.
func (r *StreakRecord) HasBadge(badge string) bool {
	return slices.Contains(r.Badges, badge)
}

// DailyChallengeRecord is the per-(owner, date) completion record.
// At most one exists per owner and calendar date; a second completion
// attempt on the same day returns the existing record unchanged.
type DailyChallengeRecord struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`

	// Date is the local calendar date (YYYY-MM-DD) the challenge was played.
	Date string `json:"date"`

	Completed   bool     `json:"completed"`
	Score       int      `json:"score"`
	Accuracy    float64  `json:"accuracy"`
	ShortcutIDs []string `json:"shortcut_ids,omitempty"`

	CompletedAt time.Time `json:"completed_at"`
}
