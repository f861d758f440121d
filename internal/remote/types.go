package remote

import "github.com/keydashapp/keydash-sync/internal/domain"

// wireAggregatedRow tolerates the field names the relational backend has
// used across schema revisions. Translation to the canonical shape happens
// here, in one place, so no fallback-field lookups leak into business logic.
type wireAggregatedRow struct {
	Name        string  `json:"name"`
	PlayerName  string  `json:"player_name"` // legacy alias
	TotalScore  int     `json:"total_score"`
	Score       int     `json:"score"` // legacy alias
	GamesPlayed int     `json:"games_played"`
	Games       int     `json:"games"` // legacy alias
	AvgAccuracy float64 `json:"avg_accuracy"`
	Accuracy    float64 `json:"accuracy"` // legacy alias
}

// canonicalAggregated maps a wire row to the canonical aggregated entry.
// Canonical fields win; legacy aliases fill in only when the canonical
// field is absent.
func canonicalAggregated(row wireAggregatedRow) domain.AggregatedEntry {
	out := domain.AggregatedEntry{
		Name:        row.Name,
		TotalScore:  row.TotalScore,
		GamesPlayed: row.GamesPlayed,
		AvgAccuracy: row.AvgAccuracy,
	}
	if out.Name == "" {
		out.Name = row.PlayerName
	}
	if out.TotalScore == 0 {
		out.TotalScore = row.Score
	}
	if out.GamesPlayed == 0 {
		out.GamesPlayed = row.Games
	}
	if out.AvgAccuracy == 0 {
		out.AvgAccuracy = row.Accuracy
	}
	return out
}
