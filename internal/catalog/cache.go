package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ott-webapp/internal/cache"
	"ott-webapp/internal/metrics"
	"ott-webapp/internal/model"

	"github.com/rs/zerolog"
)

// cachedClient serves catalog reads from a cache.Store before falling
// back to the wrapped client. Absent series are cached as JSON null so
// legacy lookups do not hit the origin every time.
type cachedClient struct {
	next   Client
	store  cache.Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedClient wraps next with a read-through cache.
func NewCachedClient(next Client, store cache.Store, ttl time.Duration, logger zerolog.Logger) Client {
	return &cachedClient{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "catalog-cache").Logger(),
	}
}

func (c *cachedClient) GetMedia(ctx context.Context, mediaID string) (*model.PlaylistItem, error) {
	return readThrough(ctx, c, "media:"+mediaID, func() (*model.PlaylistItem, error) {
		return c.next.GetMedia(ctx, mediaID)
	})
}

func (c *cachedClient) GetPlaylist(ctx context.Context, playlistID string) (*model.Playlist, error) {
	return readThrough(ctx, c, "playlist:"+playlistID, func() (*model.Playlist, error) {
		return c.next.GetPlaylist(ctx, playlistID)
	})
}

func (c *cachedClient) GetSeries(ctx context.Context, seriesID string) (*model.Series, error) {
	return readThrough(ctx, c, "series:"+seriesID, func() (*model.Series, error) {
		return c.next.GetSeries(ctx, seriesID)
	})
}

func (c *cachedClient) GetEpisodes(ctx context.Context, seriesID string, season, offset, limit int) (*model.EpisodesPage, error) {
	key := fmt.Sprintf("episodes:%s:%d:%d:%d", seriesID, season, offset, limit)
	return readThrough(ctx, c, key, func() (*model.EpisodesPage, error) {
		return c.next.GetEpisodes(ctx, seriesID, season, offset, limit)
	})
}

func (c *cachedClient) GetEpisodeMetadata(ctx context.Context, seriesID, mediaID string) (*model.EpisodeMetadata, error) {
	return readThrough(ctx, c, "episode-meta:"+seriesID+":"+mediaID, func() (*model.EpisodeMetadata, error) {
		return c.next.GetEpisodeMetadata(ctx, seriesID, mediaID)
	})
}

func readThrough[T any](ctx context.Context, c *cachedClient, key string, load func() (*T, error)) (*T, error) {
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var value *T
		if jsonErr := json.Unmarshal(raw, &value); jsonErr == nil {
			metrics.RecordCatalogCache("hit")
			return value, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		metrics.RecordCatalogCache("error")
	case errors.Is(err, cache.ErrMiss):
		metrics.RecordCatalogCache("miss")
	default:
		metrics.RecordCatalogCache("error")
	}

	value, err := load()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(value)
	if err == nil {
		if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
			c.logger.Debug().Err(err).Str("key", key).Msg("cache write skipped")
		}
	}

	return value, nil
}
