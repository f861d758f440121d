package cache

import (
	"log/slog"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/keydashapp/keydash-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "cache-test-*")
	require.NoError(t, err)

	c, err := Open(tmpDir, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		os.RemoveAll(tmpDir)
	})

	return c
}

func TestCache_PutGetRoundTrip(t *testing.T) {
	c := setupTestCache(t)

	entries := []domain.LeaderboardEntry{
		{LocalID: "lb-1", Name: "Ada", Score: 900},
		{LocalID: "lb-2", Name: "Linus", Score: 700},
	}
	require.NoError(t, c.Put(CollectionLeaderboard, entries))

	var got []domain.LeaderboardEntry
	require.True(t, c.Get(CollectionLeaderboard, &got))
	assert.Equal(t, entries, got)
}

func TestCache_GetAbsentKey(t *testing.T) {
	c := setupTestCache(t)

	var got []domain.SessionRecord
	assert.False(t, c.Get(CollectionSessions, &got))
	assert.Empty(t, got)
}

func TestCache_MalformedPayloadTreatedAsAbsent(t *testing.T) {
	c := setupTestCache(t)

	// Plant garbage directly, bypassing Put.
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(CollectionProfiles), []byte("{not json"))
	})
	require.NoError(t, err)

	var got map[string]domain.UserProfile
	assert.False(t, c.Get(CollectionProfiles, &got), "malformed payload must read as absent, not error")
}

func TestCache_PutReplacesPreviousBlob(t *testing.T) {
	c := setupTestCache(t)

	require.NoError(t, c.Put(CollectionSessions, []domain.SessionRecord{{LocalID: "ses-1"}}))
	require.NoError(t, c.Put(CollectionSessions, []domain.SessionRecord{{LocalID: "ses-2"}, {LocalID: "ses-3"}}))

	var got []domain.SessionRecord
	require.True(t, c.Get(CollectionSessions, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "ses-2", got[0].LocalID)
}

func TestCache_OwnerKeyIsolation(t *testing.T) {
	c := setupTestCache(t)

	recA := domain.StreakRecord{Email: "a@x.com", CurrentStreak: 3}
	recB := domain.StreakRecord{Email: "b@y.com", CurrentStreak: 7}
	require.NoError(t, c.Put(OwnerKey(CollectionDailyStreak, "a@x.com"), recA))
	require.NoError(t, c.Put(OwnerKey(CollectionDailyStreak, "b@y.com"), recB))

	var got domain.StreakRecord
	require.True(t, c.Get(OwnerKey(CollectionDailyStreak, "a@x.com"), &got))
	assert.Equal(t, 3, got.CurrentStreak)

	keys := c.Keys(CollectionDailyStreak + ":")
	assert.Len(t, keys, 2)
}
