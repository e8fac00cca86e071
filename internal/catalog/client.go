// Package catalog reads media, playlists and series from the content
// delivery API.
package catalog

import (
	"context"

	"ott-webapp/internal/model"
)

// Client defines the catalog reads used by the series resolver.
type Client interface {
	// GetMedia returns one media item. Unknown ids yield model.ErrMediaNotFound.
	GetMedia(ctx context.Context, mediaID string) (*model.PlaylistItem, error)

	// GetPlaylist returns a playlist by feed id.
	GetPlaylist(ctx context.Context, playlistID string) (*model.Playlist, error)

	// GetSeries returns the structured series entity, or nil when the
	// series only exists as a legacy playlist.
	GetSeries(ctx context.Context, seriesID string) (*model.Series, error)

	// GetEpisodes returns one page of episodes. A zero season means all
	// seasons.
	GetEpisodes(ctx context.Context, seriesID string, season, offset, limit int) (*model.EpisodesPage, error)

	// GetEpisodeMetadata locates mediaID inside seriesID, or returns nil
	// when the media is not an episode of that series.
	GetEpisodeMetadata(ctx context.Context, seriesID, mediaID string) (*model.EpisodeMetadata, error)
}
