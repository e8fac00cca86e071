package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ott-webapp/internal/model"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// errNotFound marks a 404 from the catalog API.
var errNotFound = errors.New("catalog: not found")

type httpClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient creates a catalog client for baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger zerolog.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With().Str("component", "catalog-client").Logger(),
	}
}

func (c *httpClient) GetMedia(ctx context.Context, mediaID string) (*model.PlaylistItem, error) {
	var resp model.Playlist
	err := c.get(ctx, "/v2/media/"+url.PathEscape(mediaID), nil, &resp)
	if errors.Is(err, errNotFound) {
		return nil, model.ErrMediaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media %s: %w", mediaID, err)
	}
	if len(resp.Playlist) == 0 {
		return nil, model.ErrMediaNotFound
	}
	return &resp.Playlist[0], nil
}

func (c *httpClient) GetPlaylist(ctx context.Context, playlistID string) (*model.Playlist, error) {
	var playlist model.Playlist
	if err := c.get(ctx, "/v2/playlists/"+url.PathEscape(playlistID), nil, &playlist); err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}
	return &playlist, nil
}

func (c *httpClient) GetSeries(ctx context.Context, seriesID string) (*model.Series, error) {
	var series model.Series
	err := c.get(ctx, "/apps/series/"+url.PathEscape(seriesID), nil, &series)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get series %s: %w", seriesID, err)
	}
	return &series, nil
}

func (c *httpClient) GetEpisodes(ctx context.Context, seriesID string, season, offset, limit int) (*model.EpisodesPage, error) {
	query := url.Values{}
	if season > 0 {
		query.Set("season", strconv.Itoa(season))
	}
	query.Set("page_offset", strconv.Itoa(offset))
	query.Set("page_limit", strconv.Itoa(limit))

	var page model.EpisodesPage
	if err := c.get(ctx, "/apps/series/"+url.PathEscape(seriesID)+"/episodes", query, &page); err != nil {
		return nil, fmt.Errorf("failed to get episodes of %s: %w", seriesID, err)
	}
	return &page, nil
}

func (c *httpClient) GetEpisodeMetadata(ctx context.Context, seriesID, mediaID string) (*model.EpisodeMetadata, error) {
	var resp struct {
		SeasonNumber  int `json:"season_number"`
		EpisodeNumber int `json:"episode_number"`
	}
	path := "/apps/series/" + url.PathEscape(seriesID) + "/episodes/" + url.PathEscape(mediaID)
	err := c.get(ctx, path, nil, &resp)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get episode metadata %s/%s: %w", seriesID, mediaID, err)
	}
	return &model.EpisodeMetadata{
		SeasonNumber:  strconv.Itoa(resp.SeasonNumber),
		EpisodeNumber: strconv.Itoa(resp.EpisodeNumber),
	}, nil
}

func (c *httpClient) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("catalog request")

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catalog returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid catalog response: %w", err)
	}
	return nil
}
