package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ott-webapp/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL, 5*time.Second, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func TestHTTPClient_GetMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/media/abc123", r.URL.Path)
		writeJSON(w, model.Playlist{Playlist: []model.PlaylistItem{{
			MediaID:      "abc123",
			Title:        "Pilot",
			CustomParams: map[string]string{"seriesPlayListId": "PL1"},
		}}})
	})

	media, err := client.GetMedia(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, "Pilot", media.Title)
	assert.Equal(t, "PL1", media.CustomParams["seriesPlayListId"])
}

func TestHTTPClient_GetMedia_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	media, err := client.GetMedia(context.Background(), "missing")

	assert.Nil(t, media)
	assert.ErrorIs(t, err, model.ErrMediaNotFound)
}

func TestHTTPClient_GetSeries_AbsentIsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/series/PL1", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	series, err := client.GetSeries(context.Background(), "PL1")

	require.NoError(t, err)
	assert.Nil(t, series)
}

func TestHTTPClient_GetSeries_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	series, err := client.GetSeries(context.Background(), "PL1")

	require.Error(t, err)
	assert.Nil(t, series)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPClient_GetEpisodes(t *testing.T) {
	tests := []struct {
		name          string
		season        int
		expectedQuery string
	}{
		{name: "All seasons", season: 0, expectedQuery: "page_limit=20&page_offset=0"},
		{name: "Single season", season: 2, expectedQuery: "page_limit=20&page_offset=0&season=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/apps/series/PL1/episodes", r.URL.Path)
				assert.Equal(t, tt.expectedQuery, r.URL.RawQuery)
				writeJSON(w, model.EpisodesPage{PageLimit: 20, Total: 25})
			})

			page, err := client.GetEpisodes(context.Background(), "PL1", tt.season, 0, 20)

			require.NoError(t, err)
			assert.True(t, page.HasNextPage())
		})
	}
}

func TestHTTPClient_GetEpisodeMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/series/PL1/episodes/ep2", r.URL.Path)
		writeJSON(w, map[string]int{"season_number": 2, "episode_number": 5})
	})

	meta, err := client.GetEpisodeMetadata(context.Background(), "PL1", "ep2")

	require.NoError(t, err)
	assert.Equal(t, &model.EpisodeMetadata{SeasonNumber: "2", EpisodeNumber: "5"}, meta)
}
