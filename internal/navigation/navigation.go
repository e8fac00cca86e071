// Package navigation builds and parses the client URLs that carry view
// state. The query string is the single source of truth for which
// sub-view, episode and feed are shown.
package navigation

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Query parameter names.
const (
	ParamView    = "u"
	ParamEpisode = "e"
	ParamFeed    = "r"
	ParamPlay    = "play"
)

// Sub-view tokens carried in the "u" parameter.
const (
	ViewChooseOffer      = "choose-offer"
	ViewWelcome          = "welcome"
	ViewPaymentCancelled = "payment-cancelled"
	ViewPaymentError     = "payment-error"
)

// State is the navigable view state decoded from a query string.
type State struct {
	View      string
	EpisodeID string
	FeedID    string
	Play      bool
}

// ParseState decodes the view state from query values.
func ParseState(values url.Values) State {
	return State{
		View:      values.Get(ParamView),
		EpisodeID: values.Get(ParamEpisode),
		FeedID:    values.Get(ParamFeed),
		Play:      values.Get(ParamPlay) == "1",
	}
}

// splitLocation separates a client location ("/path?query") into its
// path and query values. Fragments are dropped.
func splitLocation(location string) (string, url.Values) {
	if i := strings.IndexByte(location, '#'); i >= 0 {
		location = location[:i]
	}
	path, rawQuery, _ := strings.Cut(location, "?")
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	return path, values
}

func joinLocation(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

// AddQueryParam sets key=value on the location and returns path?query.
func AddQueryParam(location, key, value string) string {
	path, values := splitLocation(location)
	values.Set(key, value)
	return joinLocation(path, values)
}

// RemoveQueryParam drops key from the location.
func RemoveQueryParam(location, key string) string {
	path, values := splitLocation(location)
	values.Del(key)
	return joinLocation(path, values)
}

// AddQueryParams applies params to an absolute or relative URL. A nil
// value removes the parameter.
func AddQueryParams(rawURL string, params map[string]*string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	values := u.Query()
	for key, value := range params {
		if value == nil {
			values.Del(key)
			continue
		}
		values.Set(key, *value)
	}
	u.RawQuery = values.Encode()
	return u.String()
}

// Value returns a pointer to s, for use with AddQueryParams.
func Value(s string) *string {
	return &s
}

// Slugify turns a title into a URL path segment.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// MediaURL builds the canonical path of a media screen.
func MediaURL(mediaID, title, playlistID, episodeID string, play bool) string {
	path := "/m/" + url.PathEscape(mediaID)
	if slug := Slugify(title); slug != "" {
		path += "/" + slug
	}
	values := url.Values{}
	if playlistID != "" {
		values.Set(ParamFeed, playlistID)
	}
	if episodeID != "" {
		values.Set(ParamEpisode, episodeID)
	}
	if play {
		values.Set(ParamPlay, "1")
	}
	return joinLocation(path, values)
}

// DeprecatedSeriesURL builds the legacy series screen path. The series id
// and the play and playlist parameters are carried over unchanged.
func DeprecatedSeriesURL(seriesID, episodeID, playlistID string, play bool) string {
	path := "/s/" + url.PathEscape(seriesID)
	values := url.Values{}
	if playlistID != "" {
		values.Set(ParamFeed, playlistID)
	}
	if episodeID != "" {
		values.Set(ParamEpisode, episodeID)
	}
	if play {
		values.Set(ParamPlay, "1")
	}
	return joinLocation(path, values)
}
