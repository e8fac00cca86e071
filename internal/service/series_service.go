package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ott-webapp/internal/catalog"
	"ott-webapp/internal/metrics"
	"ott-webapp/internal/model"
	"ott-webapp/internal/navigation"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Watch progress outside (min, max) does not count as in progress.
const (
	progressMin = 0.05
	progressMax = 0.95
)

// SeriesRequest carries everything a series screen is derived from.
type SeriesRequest struct {
	MediaID string
	Nav     navigation.State
	// SeasonFilter overrides the derived season filter when set.
	SeasonFilter *string
	PageOffset   int
	WatchHistory []model.WatchHistoryItem
	// Origin prefixes the canonical URL, e.g. "https://app.example".
	Origin string
}

// seriesService implements SeriesService.
type seriesService struct {
	catalog   catalog.Client
	pageLimit int
	logger    zerolog.Logger
}

// NewSeriesService creates a new series service.
func NewSeriesService(client catalog.Client, pageLimit int, logger zerolog.Logger) SeriesService {
	if pageLimit <= 0 {
		pageLimit = 20
	}
	return &seriesService{
		catalog:   client,
		pageLimit: pageLimit,
		logger:    logger.With().Str("service", "series").Logger(),
	}
}

// seriesData is the result of the concurrent loading phase.
type seriesData struct {
	playlist *model.Playlist
	series   *model.Series
	episode  *model.PlaylistItem
}

// Resolve loads the series of a media item and builds its view. A media
// item without a structured series entity always redirects to the legacy
// series URL; one with a series entity never does.
func (s *seriesService) Resolve(ctx context.Context, req *SeriesRequest) (*model.SeriesView, error) {
	if req == nil || req.MediaID == "" {
		return nil, model.ErrMediaNotFound
	}

	media, err := s.catalog.GetMedia(ctx, req.MediaID)
	if err != nil {
		return nil, err
	}

	view, err := s.resolve(ctx, media, req)
	if err != nil {
		return nil, err
	}

	metrics.RecordSeriesResolution(string(view.State))
	return view, nil
}

func (s *seriesService) resolve(ctx context.Context, media *model.PlaylistItem, req *SeriesRequest) (*model.SeriesView, error) {
	nav := req.Nav
	legacyID := SeriesPlaylistID(media)

	data, err := s.load(ctx, media.MediaID, legacyID, nav.EpisodeID)
	if err != nil {
		if errors.Is(err, errPlaylist) {
			s.logger.Warn().Err(err).Str("media_id", media.MediaID).Msg("series playlist unavailable")
			return errorView(), nil
		}
		return nil, err
	}

	if data.playlist == nil {
		return errorView(), nil
	}

	if data.series == nil {
		to := navigation.DeprecatedSeriesURL(legacyID, "", nav.FeedID, nav.Play)
		s.logger.Debug().Str("media_id", media.MediaID).Str("to", to).Msg("no series entity, using legacy flow")
		return &model.SeriesView{
			State:      model.SeriesLegacyRedirect,
			Navigation: &model.Navigation{To: to, Replace: true},
			Filters:    []string{},
		}, nil
	}

	view := &model.SeriesView{
		State:         model.SeriesResolved,
		Series:        data.series,
		SeriesMedia:   media,
		Episode:       data.episode,
		Filters:       FiltersFromSeries(data.series),
		TotalEpisodes: data.series.EpisodeCount,
		Play:          nav.Play,
		FeedID:        nav.FeedID,
	}

	if nav.EpisodeID == "" {
		if item := episodeInProgress(req.WatchHistory, media.MediaID); item != nil {
			view.Navigation = &model.Navigation{
				To:      navigation.MediaURL(media.MediaID, media.Title, nav.FeedID, item.MediaID, false),
				Replace: true,
			}
			return view, nil
		}
	}

	if err := s.loadEpisodeDetails(ctx, view); err != nil {
		return nil, err
	}

	filter := DeriveSeasonFilter(nav.EpisodeID, view.Metadata, view.Filters, req.SeasonFilter)
	if err := s.loadEpisodes(ctx, view, filter, req.PageOffset); err != nil {
		return nil, err
	}
	if view.Playlist == nil {
		view.Playlist = data.playlist.Playlist
	}
	if view.Playlist == nil {
		view.Playlist = []model.PlaylistItem{}
	}

	view.CanonicalURL = req.Origin + navigation.MediaURL(media.MediaID, media.Title, "", episodeID(view.Episode), false)
	s.buildNavigation(view, media)

	return view, nil
}

var errPlaylist = errors.New("series playlist")

// load fetches the legacy playlist, the series entity and the selected
// episode concurrently.
func (s *seriesService) load(ctx context.Context, mediaID, legacyID, episodeID string) (*seriesData, error) {
	var data seriesData
	g, gctx := errgroup.WithContext(ctx)

	if legacyID != "" {
		g.Go(func() error {
			playlist, err := s.catalog.GetPlaylist(gctx, legacyID)
			if err != nil {
				return fmt.Errorf("%w: %w", errPlaylist, err)
			}
			data.playlist = playlist
			return nil
		})
	}

	g.Go(func() error {
		series, err := s.catalog.GetSeries(gctx, mediaID)
		if err != nil {
			return err
		}
		data.series = series
		return nil
	})

	if episodeID != "" {
		g.Go(func() error {
			episode, err := s.catalog.GetMedia(gctx, episodeID)
			if errors.Is(err, model.ErrMediaNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			data.episode = episode
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &data, nil
}

// loadEpisodeDetails fetches the trailer and episode metadata of the
// selected episode.
func (s *seriesService) loadEpisodeDetails(ctx context.Context, view *model.SeriesView) error {
	if view.Episode == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	if trailerID := view.Episode.TrailerID; trailerID != "" {
		g.Go(func() error {
			trailer, err := s.catalog.GetMedia(gctx, trailerID)
			if err != nil {
				// Trailers are optional.
				s.logger.Debug().Err(err).Str("trailer_id", trailerID).Msg("trailer unavailable")
				return nil
			}
			view.Trailer = trailer
			return nil
		})
	}

	g.Go(func() error {
		meta, err := s.catalog.GetEpisodeMetadata(gctx, view.Series.SeriesID, view.Episode.MediaID)
		if err != nil {
			return err
		}
		view.Metadata = meta
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	view.EpisodesCount = EpisodesInSeason(view.Metadata, view.Series)
	return nil
}

// loadEpisodes fetches one page of episodes for filter and the next episode.
// A nil filter means the filter is not initialised yet and no page is loaded.
func (s *seriesService) loadEpisodes(ctx context.Context, view *model.SeriesView, filter *string, offset int) error {
	if filter == nil {
		return nil
	}
	view.SeasonFilter = *filter

	season := 0
	if *filter != "" {
		n, err := strconv.Atoi(*filter)
		if err != nil || n < 0 {
			return model.NewDomainError(model.ErrCodeMissingField, "season must be a non-negative integer")
		}
		season = n
	}
	page, err := s.catalog.GetEpisodes(ctx, view.Series.SeriesID, season, offset, s.pageLimit)
	if err != nil {
		return err
	}

	view.HasNextPage = page.HasNextPage()
	view.Playlist = make([]model.PlaylistItem, 0, len(page.Episodes))
	for _, ep := range page.Episodes {
		view.Playlist = append(view.Playlist, ep.Media)
	}
	if len(view.Playlist) > 0 {
		first := view.Playlist[0]
		view.FirstEpisode = &first
	}

	next, err := s.nextEpisode(ctx, view)
	if err != nil {
		return err
	}
	view.NextEpisode = next

	return nil
}

// nextEpisode returns the episode after the selected one: the next in its
// season, or the first of the following season.
func (s *seriesService) nextEpisode(ctx context.Context, view *model.SeriesView) (*model.PlaylistItem, error) {
	if view.Episode == nil || view.Metadata == nil {
		return nil, nil
	}

	season, err := strconv.Atoi(view.Metadata.SeasonNumber)
	if err != nil {
		return nil, nil
	}
	number, err := strconv.Atoi(view.Metadata.EpisodeNumber)
	if err != nil {
		return nil, nil
	}

	page, err := s.catalog.GetEpisodes(ctx, view.Series.SeriesID, season, number, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Episodes) > 0 {
		return &page.Episodes[0].Media, nil
	}

	for _, sn := range view.Series.Seasons {
		if sn.SeasonNumber == season+1 && sn.EpisodeCount > 0 {
			page, err := s.catalog.GetEpisodes(ctx, view.Series.SeriesID, sn.SeasonNumber, 0, 1)
			if err != nil {
				return nil, err
			}
			if len(page.Episodes) > 0 {
				return &page.Episodes[0].Media, nil
			}
		}
	}

	return nil, nil
}

// buildNavigation fills the start-watching, complete and back targets.
func (s *seriesService) buildNavigation(view *model.SeriesView, media *model.PlaylistItem) {
	target := view.Episode
	if target == nil {
		target = view.FirstEpisode
	}
	if target != nil {
		view.StartWatching = StartWatchingNavigation(media, view.FeedID, target.MediaID)
	}
	if view.Episode != nil {
		view.Complete = CompleteNavigation(media, view.FeedID, view.Episode, view.NextEpisode)
		view.Back = BackNavigation(media, view.FeedID, view.Episode.MediaID)
	}
}

// SeriesPlaylistID returns the legacy series playlist id carried in the
// media custom params.
func SeriesPlaylistID(media *model.PlaylistItem) string {
	if media == nil {
		return ""
	}
	if id := media.CustomParams["seriesPlayListId"]; id != "" {
		return id
	}
	return media.CustomParams["seriesPlaylistId"]
}

// FiltersFromSeries returns the season numbers of a series as filter values.
func FiltersFromSeries(series *model.Series) []string {
	filters := []string{}
	if series == nil {
		return filters
	}
	for _, season := range series.Seasons {
		filters = append(filters, strconv.Itoa(season.SeasonNumber))
	}
	return filters
}

// DeriveSeasonFilter selects the season filter. nil means not initialised
// yet, which is distinct from "" (all seasons, or no seasons at all).
// Without an episode the first filter wins; with one, the episode's own
// season. The result depends only on the episode id, so navigating to an
// episode of another season selects that season again.
func DeriveSeasonFilter(episodeID string, meta *model.EpisodeMetadata, filters []string, override *string) *string {
	if override != nil {
		return override
	}
	if episodeID == "" {
		if len(filters) > 0 {
			return &filters[0]
		}
		all := ""
		return &all
	}
	if meta != nil {
		season := meta.SeasonNumber
		return &season
	}
	return nil
}

// EpisodesInSeason returns the episode count of the metadata's season.
func EpisodesInSeason(meta *model.EpisodeMetadata, series *model.Series) int {
	if meta == nil || series == nil {
		return 0
	}
	for _, season := range series.Seasons {
		if strconv.Itoa(season.SeasonNumber) == meta.SeasonNumber {
			return season.EpisodeCount
		}
	}
	return 0
}

// CardClickNavigation selects another episode.
func CardClickNavigation(media *model.PlaylistItem, feedID, episodeID string) *model.Navigation {
	return &model.Navigation{To: navigation.MediaURL(media.MediaID, media.Title, feedID, episodeID, false)}
}

// CompleteNavigation moves to the next episode and autostarts it, or stays
// on the finished episode when it was the last one.
func CompleteNavigation(media *model.PlaylistItem, feedID string, episode, next *model.PlaylistItem) *model.Navigation {
	if next != nil {
		return &model.Navigation{To: navigation.MediaURL(media.MediaID, media.Title, feedID, next.MediaID, true)}
	}
	return &model.Navigation{To: navigation.MediaURL(media.MediaID, media.Title, feedID, episode.MediaID, false)}
}

// StartWatchingNavigation starts playback of episodeID.
func StartWatchingNavigation(media *model.PlaylistItem, feedID, episodeID string) *model.Navigation {
	return &model.Navigation{
		To:      navigation.MediaURL(media.MediaID, media.Title, feedID, episodeID, true),
		Replace: true,
	}
}

// BackNavigation closes the player and stays on episodeID.
func BackNavigation(media *model.PlaylistItem, feedID, episodeID string) *model.Navigation {
	return &model.Navigation{To: navigation.MediaURL(media.MediaID, media.Title, feedID, episodeID, false)}
}

func episodeInProgress(history []model.WatchHistoryItem, seriesID string) *model.WatchHistoryItem {
	for i := range history {
		item := &history[i]
		if item.SeriesID == seriesID && item.Progress > progressMin && item.Progress < progressMax {
			return item
		}
	}
	return nil
}

func episodeID(episode *model.PlaylistItem) string {
	if episode == nil {
		return ""
	}
	return episode.MediaID
}

func errorView() *model.SeriesView {
	return &model.SeriesView{
		State:   model.SeriesError,
		Error:   "series_error",
		Filters: []string{},
	}
}
