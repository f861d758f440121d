package streak

import (
	"testing"
	"time"

	"github.com/keydashapp/keydash-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "a@x.com"

// apply runs a sequence of (date, qualifies) completions from scratch.
func apply(t *testing.T, inputs []struct {
	date      string
	qualifies bool
}) domain.StreakRecord {
	t.Helper()
	var rec *domain.StreakRecord
	for _, in := range inputs {
		next, _ := CompleteDay(rec, owner, in.date, in.qualifies)
		rec = &next
	}
	require.NotNil(t, rec)
	return *rec
}

func TestCompleteDay_FirstQualifyingCompletion(t *testing.T) {
	rec, newBadges := CompleteDay(nil, owner, "2024-01-01", true)

	assert.Equal(t, 1, rec.CurrentStreak)
	assert.Equal(t, 1, rec.LongestStreak)
	assert.Equal(t, "2024-01-01", rec.LastCompletedDate)
	assert.Equal(t, 1, rec.TotalDaysCompleted)
	assert.Equal(t, []string{BadgeFirstDaily}, rec.Badges)
	assert.Equal(t, []string{BadgeFirstDaily}, newBadges)
}

func TestCompleteDay_FirstNonQualifyingCompletion(t *testing.T) {
	rec, newBadges := CompleteDay(nil, owner, "2024-01-01", false)

	assert.Equal(t, 0, rec.CurrentStreak)
	assert.Equal(t, 0, rec.LongestStreak)
	assert.Empty(t, rec.LastCompletedDate)
	assert.Empty(t, rec.Badges)
	assert.Empty(t, newBadges)
}

func TestCompleteDay_Continuation(t *testing.T) {
	prev := &domain.StreakRecord{
		Email:              owner,
		CurrentStreak:      5,
		LongestStreak:      5,
		LastCompletedDate:  "2024-01-05",
		TotalDaysCompleted: 5,
		Badges:             []string{BadgeFirstDaily, StreakBadge(3)},
	}

	rec, _ := CompleteDay(prev, owner, "2024-01-06", true)

	assert.Equal(t, 6, rec.CurrentStreak)
	assert.Equal(t, 6, rec.LongestStreak)
	assert.Equal(t, "2024-01-06", rec.LastCompletedDate)
	assert.Equal(t, 6, rec.TotalDaysCompleted)
}

func TestCompleteDay_GapResets(t *testing.T) {
	prev := &domain.StreakRecord{
		Email:              owner,
		CurrentStreak:      5,
		LongestStreak:      5,
		LastCompletedDate:  "2024-01-05",
		TotalDaysCompleted: 5,
		Badges:             []string{BadgeFirstDaily, StreakBadge(3)},
	}

	rec, _ := CompleteDay(prev, owner, "2024-01-07", true)

	assert.Equal(t, 1, rec.CurrentStreak)
	assert.Equal(t, 5, rec.LongestStreak, "longest streak survives a reset")
	assert.Equal(t, "2024-01-07", rec.LastCompletedDate)
}

func TestCompleteDay_SameDayIdempotentForStreak(t *testing.T) {
	first, _ := CompleteDay(nil, owner, "2024-01-01", true)
	second, newBadges := CompleteDay(&first, owner, "2024-01-01", true)

	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	assert.Equal(t, first.LongestStreak, second.LongestStreak)
	assert.Empty(t, newBadges, "no badge is re-awarded on the same day")
}

func TestCompleteDay_NonQualifyingResetKeepsHistory(t *testing.T) {
	prev := &domain.StreakRecord{
		Email:              owner,
		CurrentStreak:      7,
		LongestStreak:      9,
		LastCompletedDate:  "2024-02-10",
		TotalDaysCompleted: 20,
		Badges:             []string{BadgeFirstDaily, StreakBadge(3), StreakBadge(7), DedicationBadge(10)},
	}

	rec, newBadges := CompleteDay(prev, owner, "2024-02-11", false)

	assert.Equal(t, 0, rec.CurrentStreak)
	assert.Equal(t, 9, rec.LongestStreak)
	assert.Equal(t, "2024-02-10", rec.LastCompletedDate, "a failed attempt does not advance the completion date")
	assert.Equal(t, 20, rec.TotalDaysCompleted)
	assert.Equal(t, prev.Badges, rec.Badges, "badges are never revoked")
	assert.Empty(t, newBadges)
}

func TestCompleteDay_DoesNotMutateInput(t *testing.T) {
	prev := &domain.StreakRecord{
		Email:              owner,
		CurrentStreak:      2,
		LongestStreak:      2,
		LastCompletedDate:  "2024-01-02",
		TotalDaysCompleted: 2,
		Badges:             []string{BadgeFirstDaily},
	}

	_, _ = CompleteDay(prev, owner, "2024-01-03", true)

	assert.Equal(t, 2, prev.CurrentStreak)
	assert.Equal(t, "2024-01-02", prev.LastCompletedDate)
	assert.Equal(t, []string{BadgeFirstDaily}, prev.Badges)
}

func TestCompleteDay_BadgeThresholds(t *testing.T) {
	tests := []struct {
		name string
		days int
		want []string
	}{
		{"three day streak", 3, []string{BadgeFirstDaily, StreakBadge(3)}},
		{"seven day streak", 7, []string{BadgeFirstDaily, StreakBadge(3), StreakBadge(7)}},
		{
			"fourteen day streak includes dedication at ten",
			14,
			[]string{BadgeFirstDaily, StreakBadge(3), StreakBadge(7), DedicationBadge(10), StreakBadge(14)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *domain.StreakRecord
			for day := 1; day <= tt.days; day++ {
				date := domain.DateOf(dayN(day))
				next, _ := CompleteDay(rec, owner, date, true)
				rec = &next
			}
			assert.ElementsMatch(t, tt.want, rec.Badges)
			assert.Equal(t, tt.days, rec.CurrentStreak)
		})
	}
}

func TestCompleteDay_BadgeOrderIsFixed(t *testing.T) {
	// Badges append in unlock order: dedicated_10 lands on day 10,
	// streak_14 on day 14.
	var rec *domain.StreakRecord
	for day := 1; day <= 14; day++ {
		next, _ := CompleteDay(rec, owner, domain.DateOf(dayN(day)), true)
		rec = &next
	}
	assert.Equal(t,
		[]string{BadgeFirstDaily, StreakBadge(3), StreakBadge(7), DedicationBadge(10), StreakBadge(14)},
		rec.Badges)
}

func TestCompleteDay_Monotonicity(t *testing.T) {
	// Mixed qualifying and non-qualifying sequence: longestStreak and the
	// badge set must never shrink across the whole run.
	var rec *domain.StreakRecord
	prevLongest := 0
	prevBadges := 0

	for day := 1; day <= 40; day++ {
		qualifies := day%5 != 0 // fail every fifth day
		next, _ := CompleteDay(rec, owner, domain.DateOf(dayN(day)), qualifies)

		require.GreaterOrEqual(t, next.LongestStreak, prevLongest)
		require.GreaterOrEqual(t, len(next.Badges), prevBadges)
		require.GreaterOrEqual(t, next.LongestStreak, next.CurrentStreak)

		prevLongest = next.LongestStreak
		prevBadges = len(next.Badges)
		rec = &next
	}
}

func TestCompleteDay_MissedDayScenario(t *testing.T) {
	// Qualifying completions on Jan 1-3, miss Jan 4, qualify Jan 5.
	rec := apply(t, []struct {
		date      string
		qualifies bool
	}{
		{"2024-01-01", true},
		{"2024-01-02", true},
		{"2024-01-03", true},
	})

	assert.Equal(t, 3, rec.CurrentStreak)
	assert.Equal(t, 3, rec.LongestStreak)
	assert.Contains(t, rec.Badges, BadgeFirstDaily)
	assert.Contains(t, rec.Badges, StreakBadge(3))

	after, _ := CompleteDay(&rec, owner, "2024-01-05", true)
	assert.Equal(t, 1, after.CurrentStreak)
	assert.Equal(t, 3, after.LongestStreak)
	assert.Contains(t, after.Badges, StreakBadge(3), "badge survives the reset")
}

func TestQualifies(t *testing.T) {
	assert.True(t, Qualifies(80))
	assert.True(t, Qualifies(100))
	assert.False(t, Qualifies(79.9))
	assert.False(t, Qualifies(0))
}

// dayN maps a 1-based day number onto a fixed calendar run starting 2024-03-01.
func dayN(n int) time.Time {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	return base.AddDate(0, 0, n-1)
}
