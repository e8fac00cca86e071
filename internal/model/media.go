package model

// PlaylistItem represents a media item in the catalogue.
type PlaylistItem struct {
	MediaID         string            `json:"mediaid"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Image           string            `json:"image,omitempty"`
	BackgroundImage string            `json:"backgroundImage,omitempty"`
	Tags            string            `json:"tags,omitempty"`
	TrailerID       string            `json:"trailerId,omitempty"`
	SeriesID        string            `json:"seriesId,omitempty"`
	Duration        float64           `json:"duration,omitempty"`
	CustomParams    map[string]string `json:"customParams,omitempty"`
}

// Playlist is a legacy series playlist.
type Playlist struct {
	FeedID   string         `json:"feedid"`
	Title    string         `json:"title"`
	Playlist []PlaylistItem `json:"playlist"`
}

// Season is a season of a structured series.
type Season struct {
	SeasonID     string `json:"season_id"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
}

// Series is the structured series entity.
type Series struct {
	SeriesID     string   `json:"series_id"`
	Title        string   `json:"title"`
	EpisodeCount int      `json:"episode_count"`
	Seasons      []Season `json:"seasons"`
}

// EpisodeMetadata locates an episode inside its series.
type EpisodeMetadata struct {
	SeasonNumber  string `json:"seasonNumber"`
	EpisodeNumber string `json:"episodeNumber"`
}

// EpisodeInSeries is one entry of an episodes page.
type EpisodeInSeries struct {
	EpisodeNumber int          `json:"episode_number"`
	SeasonNumber  int          `json:"season_number"`
	Media         PlaylistItem `json:"media_item"`
}

// EpisodesPage is one page of a season's episodes.
type EpisodesPage struct {
	Episodes   []EpisodeInSeries `json:"episodes"`
	PageOffset int               `json:"page_offset"`
	PageLimit  int               `json:"page_limit"`
	Total      int               `json:"total"`
}

// HasNextPage reports whether more episodes follow this page.
func (p *EpisodesPage) HasNextPage() bool {
	return p.PageOffset+p.PageLimit < p.Total
}

// WatchHistoryItem records playback progress of one media item.
type WatchHistoryItem struct {
	MediaID  string  `json:"mediaid"`
	SeriesID string  `json:"seriesId,omitempty"`
	Progress float64 `json:"progress"`
}

// SeriesState is the resolver state. Resolve only returns final states;
// SeriesLoading is what clients show until a resolution arrives.
type SeriesState string

const (
	SeriesLoading        SeriesState = "loading"
	SeriesLegacyRedirect SeriesState = "legacy-redirect"
	SeriesResolved       SeriesState = "resolved"
	SeriesError          SeriesState = "error"
)

// SeriesView is the resolved rendering model of a series screen.
type SeriesView struct {
	State         SeriesState      `json:"state"`
	Navigation    *Navigation      `json:"navigation,omitempty"`
	Error         string           `json:"error,omitempty"`
	Series        *Series          `json:"series,omitempty"`
	SeriesMedia   *PlaylistItem    `json:"seriesMedia,omitempty"`
	Episode       *PlaylistItem    `json:"episode,omitempty"`
	Trailer       *PlaylistItem    `json:"trailer,omitempty"`
	Metadata      *EpisodeMetadata `json:"episodeMetadata,omitempty"`
	Filters       []string         `json:"filters"`
	SeasonFilter  string           `json:"seasonFilter"`
	Playlist      []PlaylistItem   `json:"playlist"`
	HasNextPage   bool             `json:"hasNextPage"`
	EpisodesCount int              `json:"episodesInSeason"`
	TotalEpisodes int              `json:"totalEpisodes"`
	NextEpisode   *PlaylistItem    `json:"nextEpisode,omitempty"`
	FirstEpisode  *PlaylistItem    `json:"firstEpisode,omitempty"`
	CanonicalURL  string           `json:"canonicalUrl"`
	Play          bool             `json:"play"`
	FeedID        string           `json:"feedId,omitempty"`
	StartWatching *Navigation      `json:"startWatching,omitempty"`
	Complete      *Navigation      `json:"complete,omitempty"`
	Back          *Navigation      `json:"back,omitempty"`
}
