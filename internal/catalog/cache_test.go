package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ott-webapp/internal/cache"
	"ott-webapp/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingClient records origin reads.
type countingClient struct {
	Client
	seriesCalls atomic.Int32
	mediaCalls  atomic.Int32
	series      *model.Series
}

func (c *countingClient) GetSeries(ctx context.Context, seriesID string) (*model.Series, error) {
	c.seriesCalls.Add(1)
	return c.series, nil
}

func (c *countingClient) GetMedia(ctx context.Context, mediaID string) (*model.PlaylistItem, error) {
	c.mediaCalls.Add(1)
	if mediaID == "missing" {
		return nil, model.ErrMediaNotFound
	}
	return &model.PlaylistItem{MediaID: mediaID, Title: "Pilot"}, nil
}

func setupCachedClient(t *testing.T, origin Client) (*miniredis.Miniredis, Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := cache.NewRedisStore(context.Background(), cache.RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return mr, NewCachedClient(origin, store, time.Minute, zerolog.Nop())
}

func TestCachedClient_ReadThrough(t *testing.T) {
	origin := &countingClient{series: &model.Series{SeriesID: "PL1", Title: "Show"}}
	_, client := setupCachedClient(t, origin)
	ctx := context.Background()

	first, err := client.GetSeries(ctx, "PL1")
	require.NoError(t, err)
	second, err := client.GetSeries(ctx, "PL1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), origin.seriesCalls.Load())
}

func TestCachedClient_CachesAbsentSeries(t *testing.T) {
	origin := &countingClient{}
	_, client := setupCachedClient(t, origin)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		series, err := client.GetSeries(ctx, "legacy")
		require.NoError(t, err)
		assert.Nil(t, series)
	}

	assert.Equal(t, int32(1), origin.seriesCalls.Load())
}

func TestCachedClient_DoesNotCacheErrors(t *testing.T) {
	origin := &countingClient{}
	_, client := setupCachedClient(t, origin)
	ctx := context.Background()

	_, err := client.GetMedia(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrMediaNotFound))
	_, err = client.GetMedia(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrMediaNotFound))

	assert.Equal(t, int32(2), origin.mediaCalls.Load())
}

func TestCachedClient_FallsBackWhenStoreDown(t *testing.T) {
	origin := &countingClient{}
	mr, client := setupCachedClient(t, origin)
	mr.Close()

	media, err := client.GetMedia(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, "Pilot", media.Title)
}

func TestCachedClient_Expiry(t *testing.T) {
	origin := &countingClient{}
	mr, client := setupCachedClient(t, origin)
	ctx := context.Background()

	_, err := client.GetMedia(ctx, "abc")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = client.GetMedia(ctx, "abc")
	require.NoError(t, err)

	assert.Equal(t, int32(2), origin.mediaCalls.Load())
}
