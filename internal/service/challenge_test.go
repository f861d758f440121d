package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
	"github.com/keydashapp/keydash-sync/internal/store/sqlite"
	"github.com/keydashapp/keydash-sync/internal/streak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T) *ProgressService {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "progress-service-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := sqlite.Open(dbPath, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	})

	return NewProgressService(testStore, slog.New(slog.DiscardHandler))
}

func completeDay(t *testing.T, svc *ProgressService, email, date string, accuracy float64) *ChallengeResult {
	t.Helper()
	result, err := svc.CompleteDailyChallenge(context.Background(), CompleteChallengeRequest{
		Email:    email,
		Date:     date,
		Score:    200,
		Accuracy: accuracy,
	})
	require.NoError(t, err)
	return result
}

func TestCompleteDailyChallenge_FirstCompletion(t *testing.T) {
	svc := setupTestService(t)

	result := completeDay(t, svc, "ada@test.com", "2024-06-01", 92)

	assert.True(t, result.Record.Completed)
	assert.NotZero(t, result.Record.ID)
	assert.Equal(t, 1, result.Streak.CurrentStreak)
	assert.Equal(t, 1, result.Streak.TotalDaysCompleted)
	assert.Equal(t, []string{streak.BadgeFirstDaily}, result.NewBadges)
}

func TestCompleteDailyChallenge_ConsecutiveDays(t *testing.T) {
	svc := setupTestService(t)

	completeDay(t, svc, "ada@test.com", "2024-06-01", 92)
	completeDay(t, svc, "ada@test.com", "2024-06-02", 95)
	result := completeDay(t, svc, "ada@test.com", "2024-06-03", 88)

	assert.Equal(t, 3, result.Streak.CurrentStreak)
	assert.Equal(t, []string{streak.StreakBadge(3)}, result.NewBadges)
}

func TestCompleteDailyChallenge_GapResetsStreak(t *testing.T) {
	svc := setupTestService(t)

	completeDay(t, svc, "ada@test.com", "2024-06-01", 92)
	completeDay(t, svc, "ada@test.com", "2024-06-02", 95)
	result := completeDay(t, svc, "ada@test.com", "2024-06-05", 90)

	assert.Equal(t, 1, result.Streak.CurrentStreak)
	assert.Equal(t, 2, result.Streak.LongestStreak, "history survives the reset")
	assert.Equal(t, 3, result.Streak.TotalDaysCompleted)
}

func TestCompleteDailyChallenge_RepeatSameDay(t *testing.T) {
	svc := setupTestService(t)

	first := completeDay(t, svc, "ada@test.com", "2024-06-01", 92)
	repeat := completeDay(t, svc, "ada@test.com", "2024-06-01", 100)

	assert.Equal(t, first.Record.ID, repeat.Record.ID, "the stored record stands")
	assert.Equal(t, first.Record.Accuracy, repeat.Record.Accuracy)
	assert.Equal(t, 1, repeat.Streak.CurrentStreak)
	assert.Empty(t, repeat.NewBadges)
}

func TestCompleteDailyChallenge_NonQualifyingBreaksStreak(t *testing.T) {
	svc := setupTestService(t)

	completeDay(t, svc, "ada@test.com", "2024-06-01", 92)
	completeDay(t, svc, "ada@test.com", "2024-06-02", 95)
	result := completeDay(t, svc, "ada@test.com", "2024-06-03", 50)

	assert.Equal(t, 0, result.Streak.CurrentStreak)
	assert.Equal(t, 2, result.Streak.LongestStreak)
	assert.Equal(t, "2024-06-02", result.Streak.LastCompletedDate,
		"a non-qualifying day never becomes the last completed date")
	assert.Empty(t, result.NewBadges)
}

func TestCompleteDailyChallenge_Validation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CompleteDailyChallenge(ctx, CompleteChallengeRequest{Date: "2024-06-01"})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "missing email")

	_, err = svc.CompleteDailyChallenge(ctx, CompleteChallengeRequest{Email: "a@x.com", Date: "June 1st"})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "malformed date")

	_, err = svc.CompleteDailyChallenge(ctx, CompleteChallengeRequest{Email: "a@x.com", Date: "2024-06-01", Accuracy: 120})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "accuracy out of range")
}

func TestGetStreak_UnknownOwnerGetsZeroRecord(t *testing.T) {
	svc := setupTestService(t)

	record, err := svc.GetStreak(context.Background(), "nobody@test.com")
	require.NoError(t, err)
	assert.Equal(t, "nobody@test.com", record.Email)
	assert.Zero(t, record.CurrentStreak)
	assert.NotNil(t, record.Badges)
}

func TestGetDailyChallenge_NotFound(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.GetDailyChallenge(context.Background(), "ada@test.com", "2024-06-01")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
