// Package streak implements the daily-challenge streak and badge state machine.
//
// CompleteDay is deliberately a pure function with no I/O: the offline client
// path and the backend's challenge service both call it, which is what keeps
// the two tiers behaviorally identical for any sequence of completions.
package streak

import (
	"fmt"

	"github.com/keydashapp/keydash-sync/internal/domain"
)

// QualifyingAccuracy is the minimum accuracy (percent) for a daily-challenge
// attempt to count toward streak continuation.
const QualifyingAccuracy = 80.0

// Badge identifiers. Badges unlock one-directionally and are never revoked.
const (
	BadgeFirstDaily = "first_daily"
)

// Streak-length thresholds, ascending. Each unlocks "streak_<N>".
var streakThresholds = []int{3, 7, 14, 30, 60, 100}

// Cumulative-days thresholds, ascending. Each unlocks "dedicated_<N>".
var dedicationThresholds = []int{10, 50, 100}

// StreakBadge returns the badge identifier for a streak-length threshold.
func StreakBadge(n int) string {
	return fmt.Sprintf("streak_%d", n)
}

// DedicationBadge returns the badge identifier for a cumulative-days threshold.
func DedicationBadge(n int) string {
	return fmt.Sprintf("dedicated_%d", n)
}

// Qualifies reports whether an attempt's accuracy meets the streak threshold.
func Qualifies(accuracy float64) bool {
	return accuracy >= QualifyingAccuracy
}

// CompleteDay applies one daily-challenge completion to a streak record.
//
// prev is nil when the owner has no streak record yet; the record is created
// lazily. today is a YYYY-MM-DD calendar date in the owner's local time.
// The returned record is a new value; prev is never mutated. newBadges holds
// only the badges unlocked by this invocation, for "you just unlocked X"
// notifications - badges present before the call never appear in it.
//
// Callers are responsible for invoking this at most once per (owner, date):
// completion records are deduplicated upstream. The same-day branch still
// leaves CurrentStreak unchanged so that a re-invocation against state synced
// from the other tier stays idempotent for the streak number.
func CompleteDay(prev *domain.StreakRecord, owner, today string, qualifies bool) (domain.StreakRecord, []string) {
	if prev == nil {
		rec := domain.StreakRecord{Email: owner, Badges: []string{}}
		if !qualifies {
			return rec, nil
		}
		rec.CurrentStreak = 1
		rec.LongestStreak = 1
		rec.LastCompletedDate = today
		rec.TotalDaysCompleted = 1
		rec.Badges = []string{BadgeFirstDaily}
		return rec, []string{BadgeFirstDaily}
	}

	rec := *prev
	rec.Badges = append([]string(nil), prev.Badges...)

	if !qualifies {
		// Full reset. Earned badges and the longest streak are untouched, and
		// LastCompletedDate stays where it was: a non-qualifying attempt does
		// not count as "completed" for continuity purposes.
		rec.CurrentStreak = 0
		return rec, nil
	}

	switch rec.LastCompletedDate {
	case domain.PreviousDay(today):
		rec.CurrentStreak++
	case today:
		// Already completed today; re-invocation leaves the streak alone.
	default:
		// Gap longer than one day, or first-ever completion.
		rec.CurrentStreak = 1
	}

	rec.TotalDaysCompleted++
	rec.LastCompletedDate = today
	rec.LongestStreak = max(rec.LongestStreak, rec.CurrentStreak)

	newBadges := evaluateBadges(&rec)
	return rec, newBadges
}

// evaluateBadges awards any badges the record now earns, in fixed order,
// appending to rec.Badges and returning only the ones added here.
// Threshold checks use >= so a threshold reached in one jump still unlocks.
func evaluateBadges(rec *domain.StreakRecord) []string {
	var added []string

	award := func(badge string) {
		if !rec.HasBadge(badge) {
			rec.Badges = append(rec.Badges, badge)
			added = append(added, badge)
		}
	}

	if rec.TotalDaysCompleted >= 1 {
		award(BadgeFirstDaily)
	}
	for _, n := range streakThresholds {
		if rec.CurrentStreak >= n {
			award(StreakBadge(n))
		}
	}
	for _, n := range dedicationThresholds {
		if rec.TotalDaysCompleted >= n {
			award(DedicationBadge(n))
		}
	}

	return added
}
