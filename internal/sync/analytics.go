package sync

import (
	"context"
	"math"
	"slices"

	"github.com/keydashapp/keydash-sync/internal/cache"
	"github.com/keydashapp/keydash-sync/internal/domain"
	"github.com/keydashapp/keydash-sync/internal/remote"
)

// Weak-shortcut thresholds. The flat practice-focus list and the per-category
// summary intentionally use different cutoffs: the list exists to pick what
// to drill next, the summary to flag a category as shaky. Do not unify them.
const (
	minAttemptsForWeakness = 2
	weakShortcutAccuracy   = 60 // flat list: below this is worth drilling
	categoryWeakAccuracy   = 70 // category summary: below this flags the category
)

// GetCategoryAnalysis returns per-category answer statistics for an owner,
// including shortcuts weak enough to flag the category.
// The result is never an error: with no reachable data it is simply empty.
func (s *Service) GetCategoryAnalysis(ctx context.Context, ownerEmail string) map[string]domain.CategoryStats {
	answers := s.answerHistory(ctx, ownerEmail)

	stats := make(map[string]domain.CategoryStats)
	perShortcut := make(map[string]*shortcutTally)

	for _, a := range answers {
		cs := stats[a.Category]
		cs.Category = a.Category
		cs.Total++
		if a.Correct {
			cs.Correct++
		}
		stats[a.Category] = cs

		tallyAnswer(perShortcut, a)
	}

	for category, cs := range stats {
		cs.Accuracy = roundedAccuracy(cs.Correct, cs.Total)
		for _, t := range sortedTallies(perShortcut) {
			if t.category != category {
				continue
			}
			if t.total >= minAttemptsForWeakness && roundedAccuracy(t.correct, t.total) < categoryWeakAccuracy {
				cs.WeakShortcuts = append(cs.WeakShortcuts, t.shortcutID)
			}
		}
		stats[category] = cs
	}

	return stats
}

// GetWeakShortcuts returns the shortcuts the owner should drill, weakest
// first: attempted at least twice with accuracy below 60 percent.
func (s *Service) GetWeakShortcuts(ctx context.Context, ownerEmail string) []domain.WeakShortcut {
	answers := s.answerHistory(ctx, ownerEmail)

	perShortcut := make(map[string]*shortcutTally)
	for _, a := range answers {
		tallyAnswer(perShortcut, a)
	}

	var weak []domain.WeakShortcut
	for _, t := range sortedTallies(perShortcut) {
		accuracy := roundedAccuracy(t.correct, t.total)
		if t.total >= minAttemptsForWeakness && accuracy < weakShortcutAccuracy {
			weak = append(weak, domain.WeakShortcut{
				ShortcutID: t.shortcutID,
				Category:   t.category,
				Correct:    t.correct,
				Total:      t.total,
				Accuracy:   accuracy,
			})
		}
	}

	slices.SortStableFunc(weak, func(a, b domain.WeakShortcut) int {
		return a.Accuracy - b.Accuracy
	})
	return weak
}

// answerHistory fetches the owner's answers from the remote tier when
// healthy (mirroring them locally), else from the local cache.
func (s *Service) answerHistory(ctx context.Context, ownerEmail string) []domain.AnswerRecord {
	if s.gateway.Healthy(ctx) {
		answers, err := s.gateway.ListAnswers(ctx, remote.AnswerFilter{Owner: ownerEmail})
		if err == nil {
			s.mergeAnswerHistory(ownerEmail, answers)
			return answers
		}
		s.logger.Debug("answer history falling back to local tier", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(cache.CollectionAnswerHistory)

	var mine []domain.AnswerRecord
	for _, a := range s.answers {
		if a.Email == ownerEmail {
			mine = append(mine, a)
		}
	}
	return mine
}

// mergeAnswerHistory replaces one owner's rows in the local mirror with the
// backend's view of their history. The fetch is scoped to a single owner, so
// overwriting the whole collection would drop every other owner's rows.
func (s *Service) mergeAnswerHistory(ownerEmail string, answers []domain.AnswerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(cache.CollectionAnswerHistory)

	merged := make([]domain.AnswerRecord, 0, len(s.answers)+len(answers))
	for _, a := range s.answers {
		if a.Email != ownerEmail {
			merged = append(merged, a)
		}
	}
	merged = append(merged, answers...)
	slices.SortStableFunc(merged, func(a, b domain.AnswerRecord) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if len(merged) > maxAnswerRecords {
		merged = merged[len(merged)-maxAnswerRecords:]
	}
	s.answers = merged
	s.persist(cache.CollectionAnswerHistory, s.answers)
}

// shortcutTally accumulates per-shortcut attempt counts.
type shortcutTally struct {
	shortcutID string
	category   string
	correct    int
	total      int
}

func tallyAnswer(perShortcut map[string]*shortcutTally, a domain.AnswerRecord) {
	t, ok := perShortcut[a.ShortcutID]
	if !ok {
		t = &shortcutTally{shortcutID: a.ShortcutID, category: a.Category}
		perShortcut[a.ShortcutID] = t
	}
	t.total++
	if a.Correct {
		t.correct++
	}
}

// sortedTallies returns tallies in deterministic shortcut-id order.
func sortedTallies(perShortcut map[string]*shortcutTally) []*shortcutTally {
	out := make([]*shortcutTally, 0, len(perShortcut))
	for _, t := range perShortcut {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *shortcutTally) int {
		switch {
		case a.shortcutID < b.shortcutID:
			return -1
		case a.shortcutID > b.shortcutID:
			return 1
		default:
			return 0
		}
	})
	return out
}

// roundedAccuracy is round(100*correct/total), 0 when total is 0.
func roundedAccuracy(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
