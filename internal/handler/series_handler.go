package handler

import (
	"net/http"
	"strconv"

	"ott-webapp/internal/model"
	"ott-webapp/internal/navigation"
	"ott-webapp/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SeriesRequestBody is the optional body of a series lookup.
type SeriesRequestBody struct {
	WatchHistory []model.WatchHistoryItem `json:"watchHistory"`
}

// SeriesHandler handles series screen HTTP requests.
type SeriesHandler struct {
	service service.SeriesService
	logger  zerolog.Logger
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(service service.SeriesService, logger zerolog.Logger) *SeriesHandler {
	return &SeriesHandler{
		service: service,
		logger:  logger.With().Str("handler", "series").Logger(),
	}
}

// Resolve handles GET and POST /api/media/{id}/series requests. The query
// carries the navigation state (u, e, r, play) plus optional season and
// offset; a POST body may carry the viewer's watch history.
func (h *SeriesHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")
	if mediaID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "media ID is required", h.logger)
		return
	}

	query := r.URL.Query()
	req := &service.SeriesRequest{
		MediaID: mediaID,
		Nav:     navigation.ParseState(query),
		Origin:  r.Header.Get("Origin"),
	}

	// An empty season selects all seasons.
	if values, ok := query["season"]; ok && len(values) > 0 {
		season := values[0]
		if season != "" {
			if n, err := strconv.Atoi(season); err != nil || n < 0 {
				writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "season must be a non-negative integer", h.logger)
				return
			}
		}
		req.SeasonFilter = &season
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "offset must be a non-negative integer", h.logger)
			return
		}
		req.PageOffset = offset
	}

	if r.Method == http.MethodPost {
		var body SeriesRequestBody
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
			return
		}
		req.WatchHistory = body.WatchHistory
	}

	view, err := h.service.Resolve(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
