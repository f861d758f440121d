package remote

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/keydashapp/keydash-sync/internal/domain"
	apperrors "github.com/keydashapp/keydash-sync/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, time.Second, slog.New(slog.DiscardHandler)), srv
}

func jsonHealth(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(`{"success":true,"data":{"status":"healthy"}}`))
}

func TestHealthy_ProbesOnceAndCaches(t *testing.T) {
	probes := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			probes++
			jsonHealth(w)
		}
	}))

	ctx := context.Background()
	assert.True(t, c.Healthy(ctx))
	assert.True(t, c.Healthy(ctx))
	assert.True(t, c.Healthy(ctx))
	assert.Equal(t, 1, probes, "probe result is cached for the process lifetime")
}

func TestHealthy_ContentTypeMismatchIsOffline(t *testing.T) {
	// An HTML answer on /health means we reached something that is not the
	// backend (captive portal, misconfigured proxy).
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>sign in to the network</html>"))
	}))

	assert.False(t, c.Healthy(context.Background()))
}

func TestHealthy_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listens there anymore

	c := New(url, 200*time.Millisecond, slog.New(slog.DiscardHandler))
	assert.False(t, c.Healthy(context.Background()))
}

func TestCall_RejectionCarriesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			jsonHealth(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"score must be non-negative"}`))
	}))

	ctx := context.Background()
	_, err := c.CreateLeaderboardEntry(ctx, domain.LeaderboardEntry{Name: "Ada", Score: -1})
	require.Error(t, err)

	var domainErr *apperrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeRejected, domainErr.Code)
	assert.Equal(t, http.StatusBadRequest, domainErr.StatusCode)
	assert.Equal(t, "score must be non-negative", domainErr.Message)

	// A rejection means the server was reached: health stays up.
	assert.True(t, c.Healthy(ctx))
}

func TestCall_TransportFailureIsOfflineAndFlipsHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonHealth(w)
	}))
	c := New(srv.URL, 200*time.Millisecond, slog.New(slog.DiscardHandler))

	ctx := context.Background()
	require.True(t, c.Healthy(ctx))

	srv.Close()

	_, err := c.GetStreak(ctx, "a@x.com")
	require.ErrorIs(t, err, apperrors.ErrOffline)

	// The failed request downgraded the cached flag without a re-probe.
	assert.False(t, c.Healthy(ctx))
}

func TestCall_SuccessRestoresHealth(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			jsonHealth(w)
		case "/api/v1/streaks":
			w.Write([]byte(`{"success":true,"data":{"email":"a@x.com","current_streak":4,"longest_streak":9,"total_days_completed":12,"badges":["first_daily","streak_3","dedicated_10"]}}`))
		}
	}))

	ctx := context.Background()
	rec, err := c.GetStreak(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 4, rec.CurrentStreak)
	assert.Equal(t, 9, rec.LongestStreak)
	assert.Contains(t, rec.Badges, "dedicated_10")
	assert.True(t, c.Healthy(ctx))
}

func TestAggregatedLeaderboard_MapsLegacyFieldNames(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/health" {
			jsonHealth(w)
			return
		}
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		// One canonical row, one legacy-shaped row.
		w.Write([]byte(`{"success":true,"data":[
			{"name":"Ada","total_score":900,"games_played":3,"avg_accuracy":92.5},
			{"player_name":"Linus","score":700,"games":2,"accuracy":88}
		]}`))
	}))

	rows, err := c.AggregatedLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.AggregatedEntry{Name: "Ada", TotalScore: 900, GamesPlayed: 3, AvgAccuracy: 92.5}, rows[0])
	assert.Equal(t, domain.AggregatedEntry{Name: "Linus", TotalScore: 700, GamesPlayed: 2, AvgAccuracy: 88}, rows[1])
}

func TestResourceKey(t *testing.T) {
	assert.Equal(t, "leaderboard", resourceKey(apiPrefix+"/leaderboard"))
	assert.Equal(t, "leaderboard", resourceKey(apiPrefix+"/leaderboard/aggregated"))
	assert.Equal(t, "challenges", resourceKey(apiPrefix+"/challenges"))
}
