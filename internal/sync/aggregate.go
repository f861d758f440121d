package sync

import (
	"context"
	"slices"

	"github.com/keydashapp/keydash-sync/internal/cache"
	"github.com/keydashapp/keydash-sync/internal/domain"
)

// GetAggregatedLeaderboard returns the top count players by total score.
//
// When the backend is healthy the pre-aggregated server view is used;
// otherwise the same aggregation runs over the locally cached entries. Both
// paths share one ordering contract: descending total score, ties broken by
// earliest submission, never by a secondary score key.
func (s *Service) GetAggregatedLeaderboard(ctx context.Context, count int) []domain.AggregatedEntry {
	if s.gateway.Healthy(ctx) {
		rows, err := s.gateway.AggregatedLeaderboard(ctx, count)
		if err == nil {
			return rows
		}
		s.logger.Debug("aggregated leaderboard falling back to local tier", "error", err)
	}

	s.mu.Lock()
	s.ensureLoaded(cache.CollectionLeaderboard)
	entries := slices.Clone(s.leaderboard)
	s.mu.Unlock()

	return AggregateEntries(entries, count)
}

// AggregateEntries groups leaderboard entries by display name, summing score
// and game count and averaging accuracy, then ranks by total score.
// Grouping walks the entries oldest submission first, so tied totals rank by
// whoever submitted earliest - the same order the backend's MIN(id) tie-break
// produces.
func AggregateEntries(entries []domain.LeaderboardEntry, count int) []domain.AggregatedEntry {
	// The cached slice is kept sorted by score for display; aggregation must
	// not inherit that order or ties would rank by best single run.
	ordered := slices.Clone(entries)
	slices.SortStableFunc(ordered, func(a, b domain.LeaderboardEntry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	byName := make(map[string]int) // name -> index into rows
	rows := make([]domain.AggregatedEntry, 0)
	sums := make([]float64, 0)

	for _, e := range ordered {
		i, ok := byName[e.Name]
		if !ok {
			i = len(rows)
			byName[e.Name] = i
			rows = append(rows, domain.AggregatedEntry{Name: e.Name})
			sums = append(sums, 0)
		}
		rows[i].TotalScore += e.Score
		rows[i].GamesPlayed++
		sums[i] += e.Accuracy
	}

	for i := range rows {
		rows[i].AvgAccuracy = sums[i] / float64(rows[i].GamesPlayed)
	}

	slices.SortStableFunc(rows, func(a, b domain.AggregatedEntry) int {
		return b.TotalScore - a.TotalScore
	})

	if count > 0 && len(rows) > count {
		rows = rows[:count]
	}
	return rows
}
