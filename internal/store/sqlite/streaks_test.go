package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
)

func TestStreakRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &domain.StreakRecord{
		Email:              "ada@test.com",
		CurrentStreak:      3,
		LongestStreak:      7,
		LastCompletedDate:  "2024-06-01",
		TotalDaysCompleted: 12,
		Badges:             []string{"first_daily", "streak_3", "dedicated_10"},
	}
	if err := s.SaveStreak(ctx, record); err != nil {
		t.Fatalf("SaveStreak: %v", err)
	}

	got, err := s.GetStreak(ctx, "ada@test.com")
	if err != nil {
		t.Fatalf("GetStreak: %v", err)
	}
	if got.CurrentStreak != 3 || got.LongestStreak != 7 {
		t.Errorf("streak counters: %+v", got)
	}
	if got.LastCompletedDate != "2024-06-01" {
		t.Errorf("LastCompletedDate: got %q", got.LastCompletedDate)
	}
	if len(got.Badges) != 3 || got.Badges[1] != "streak_3" {
		t.Errorf("Badges: got %v", got.Badges)
	}
}

func TestSaveStreakUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &domain.StreakRecord{Email: "ada@test.com", CurrentStreak: 1, LongestStreak: 1, Badges: []string{"first_daily"}}
	if err := s.SaveStreak(ctx, record); err != nil {
		t.Fatalf("SaveStreak: %v", err)
	}

	record.CurrentStreak = 2
	record.LongestStreak = 2
	if err := s.SaveStreak(ctx, record); err != nil {
		t.Fatalf("SaveStreak update: %v", err)
	}

	got, err := s.GetStreak(ctx, "ada@test.com")
	if err != nil {
		t.Fatalf("GetStreak: %v", err)
	}
	if got.CurrentStreak != 2 {
		t.Errorf("expected updated streak, got %d", got.CurrentStreak)
	}
}

func TestGetStreakNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetStreak(context.Background(), "nobody@test.com")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDailyChallengeRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &domain.DailyChallengeRecord{
		Email:       "ada@test.com",
		Date:        "2024-06-01",
		Completed:   true,
		Score:       300,
		Accuracy:    92.5,
		ShortcutIDs: []string{"copy", "paste"},
		CompletedAt: time.Now().UTC(),
	}
	if err := s.CreateDailyChallenge(ctx, record); err != nil {
		t.Fatalf("CreateDailyChallenge: %v", err)
	}
	if record.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := s.GetDailyChallenge(ctx, "ada@test.com", "2024-06-01")
	if err != nil {
		t.Fatalf("GetDailyChallenge: %v", err)
	}
	if !got.Completed || got.Score != 300 || got.Accuracy != 92.5 {
		t.Errorf("challenge record: %+v", got)
	}
	if len(got.ShortcutIDs) != 2 {
		t.Errorf("ShortcutIDs: got %v", got.ShortcutIDs)
	}
}

func TestCreateDailyChallengeOncePerDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &domain.DailyChallengeRecord{
		Email: "ada@test.com", Date: "2024-06-01", Completed: true,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.CreateDailyChallenge(ctx, record); err != nil {
		t.Fatalf("CreateDailyChallenge: %v", err)
	}

	dup := &domain.DailyChallengeRecord{
		Email: "ada@test.com", Date: "2024-06-01", Completed: true,
		Score: 999, CompletedAt: time.Now().UTC(),
	}
	err := s.CreateDailyChallenge(ctx, dup)
	if !errors.Is(err, apperrors.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	// A different date for the same owner is fine.
	next := &domain.DailyChallengeRecord{
		Email: "ada@test.com", Date: "2024-06-02", Completed: true,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.CreateDailyChallenge(ctx, next); err != nil {
		t.Errorf("next day insert: %v", err)
	}
}
