package sync

import (
	"context"
	"testing"
	"time"

	"github.com/keydashapp/keydash-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(name string, score int, accuracy float64) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{Name: name, Score: score, Accuracy: accuracy}
}

func TestAggregateEntries_GroupsByName(t *testing.T) {
	rows := AggregateEntries([]domain.LeaderboardEntry{
		entry("Ada", 100, 90),
		entry("Linus", 250, 80),
		entry("Ada", 200, 70),
	}, 10)

	require.Len(t, rows, 2)
	assert.Equal(t, domain.AggregatedEntry{
		Name:        "Ada",
		TotalScore:  300,
		GamesPlayed: 2,
		AvgAccuracy: 80,
	}, rows[0])
	assert.Equal(t, "Linus", rows[1].Name)
	assert.Equal(t, 1, rows[1].GamesPlayed)
}

func TestAggregateEntries_TiesKeepFirstAppearanceOrder(t *testing.T) {
	rows := AggregateEntries([]domain.LeaderboardEntry{
		entry("Zed", 100, 90),
		entry("Ada", 100, 90),
		entry("Mia", 100, 90),
	}, 10)

	require.Len(t, rows, 3)
	assert.Equal(t, "Zed", rows[0].Name)
	assert.Equal(t, "Ada", rows[1].Name)
	assert.Equal(t, "Mia", rows[2].Name)
}

func TestAggregateEntries_TieOrderIgnoresScoreSortedInput(t *testing.T) {
	at := func(name string, score, sec int) domain.LeaderboardEntry {
		e := entry(name, score, 90)
		e.CreatedAt = time.Date(2024, 6, 1, 10, 0, sec, 0, time.UTC)
		return e
	}

	// Input arrives sorted by score, the way the display cache keeps it, but
	// Ada's first run predates everyone else's.
	rows := AggregateEntries([]domain.LeaderboardEntry{
		at("Linus", 300, 2),
		at("Mia", 300, 4),
		at("Ada", 200, 3),
		at("Ada", 100, 1),
	}, 10)

	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 300, r.TotalScore)
	}
	assert.Equal(t, "Ada", rows[0].Name, "earliest submitter wins the tie")
	assert.Equal(t, "Linus", rows[1].Name)
	assert.Equal(t, "Mia", rows[2].Name)
}

func TestAggregateEntries_CountBounds(t *testing.T) {
	entries := []domain.LeaderboardEntry{
		entry("Ada", 300, 90),
		entry("Linus", 200, 90),
		entry("Mia", 100, 90),
	}

	assert.Len(t, AggregateEntries(entries, 2), 2)
	assert.Len(t, AggregateEntries(entries, 0), 3, "zero count means unbounded")
	assert.Empty(t, AggregateEntries(nil, 5))
}

func TestGetAggregatedLeaderboard_OfflineUsesLocalEntries(t *testing.T) {
	svc := setupOffline(t)
	ctx := context.Background()

	for _, e := range []struct {
		name  string
		score int
	}{
		{"Ada", 100}, {"Ada", 150}, {"Linus", 200},
	} {
		_, err := svc.SubmitLeaderboardEntry(ctx, SubmitLeaderboardEntryRequest{
			Name: e.name, Score: e.score,
		}, "x@y.com")
		require.NoError(t, err)
	}

	rows := svc.GetAggregatedLeaderboard(ctx, 10)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada", rows[0].Name)
	assert.Equal(t, 250, rows[0].TotalScore)
	assert.Equal(t, 2, rows[0].GamesPlayed)
}

func TestGetAggregatedLeaderboard_TieOrderSurvivesScoreSortedCache(t *testing.T) {
	svc := setupOffline(t)
	ctx := context.Background()

	// Submission order Ada, Linus, Ada, Mia; the display cache re-sorts by
	// score, splitting Ada's rows around the 300s.
	for _, e := range []struct {
		name  string
		score int
	}{
		{"Ada", 100}, {"Linus", 300}, {"Ada", 200}, {"Mia", 300},
	} {
		_, err := svc.SubmitLeaderboardEntry(ctx, SubmitLeaderboardEntryRequest{
			Name: e.name, Score: e.score,
		}, "x@y.com")
		require.NoError(t, err)
	}

	rows := svc.GetAggregatedLeaderboard(ctx, 10)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 300, r.TotalScore)
	}
	assert.Equal(t, "Ada", rows[0].Name, "Ada submitted first")
	assert.Equal(t, "Linus", rows[1].Name)
	assert.Equal(t, "Mia", rows[2].Name)
}
