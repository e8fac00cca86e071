package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ott-webapp/internal/model"
	"ott-webapp/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSeriesService is a mock implementation of SeriesService.
type MockSeriesService struct {
	mock.Mock
}

func (m *MockSeriesService) Resolve(ctx context.Context, req *service.SeriesRequest) (*model.SeriesView, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SeriesView), args.Error(1)
}

func newSeriesRouter(svc *MockSeriesService) http.Handler {
	h := NewSeriesHandler(svc, zerolog.Nop())
	r := chi.NewRouter()
	r.Get("/api/media/{id}/series", h.Resolve)
	r.Post("/api/media/{id}/series", h.Resolve)
	return r
}

func TestSeriesHandler_Resolve_ParsesQuery(t *testing.T) {
	svc := new(MockSeriesService)

	var captured *service.SeriesRequest
	svc.On("Resolve", mock.Anything, mock.AnythingOfType("*service.SeriesRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*service.SeriesRequest)
		}).
		Return(&model.SeriesView{State: model.SeriesResolved}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/media/abc123/series?e=ep1&r=feedA&play=1&season=2&offset=20", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	newSeriesRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "abc123", captured.MediaID)
	assert.Equal(t, "ep1", captured.Nav.EpisodeID)
	assert.Equal(t, "feedA", captured.Nav.FeedID)
	assert.True(t, captured.Nav.Play)
	require.NotNil(t, captured.SeasonFilter)
	assert.Equal(t, "2", *captured.SeasonFilter)
	assert.Equal(t, 20, captured.PageOffset)
	assert.Equal(t, "https://app.example", captured.Origin)
	assert.Nil(t, captured.WatchHistory)
}

func TestSeriesHandler_Resolve_NoSeasonOverride(t *testing.T) {
	svc := new(MockSeriesService)
	svc.On("Resolve", mock.Anything, mock.MatchedBy(func(r *service.SeriesRequest) bool {
		return r.SeasonFilter == nil && r.PageOffset == 0
	})).Return(&model.SeriesView{State: model.SeriesResolved}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/media/abc123/series", nil)
	w := httptest.NewRecorder()
	newSeriesRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSeriesHandler_Resolve_WatchHistoryBody(t *testing.T) {
	svc := new(MockSeriesService)
	svc.On("Resolve", mock.Anything, mock.MatchedBy(func(r *service.SeriesRequest) bool {
		return len(r.WatchHistory) == 1 && r.WatchHistory[0].MediaID == "ep5" && r.WatchHistory[0].Progress == 0.5
	})).Return(&model.SeriesView{
		State:      model.SeriesResolved,
		Navigation: &model.Navigation{To: "/m/abc123/show?e=ep5", Replace: true},
	}, nil)

	body := bytes.NewBufferString(`{"watchHistory":[{"mediaid":"ep5","seriesId":"abc123","progress":0.5}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/media/abc123/series", body)
	w := httptest.NewRecorder()
	newSeriesRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var view model.SeriesView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	require.NotNil(t, view.Navigation)
	assert.True(t, view.Navigation.Replace)
	svc.AssertExpectations(t)
}

func TestSeriesHandler_Resolve_Errors(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Media not found",
			path:           "/api/media/missing/series",
			mockError:      model.ErrMediaNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Invalid offset",
			path:           "/api/media/abc/series?offset=-1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Non numeric offset",
			path:           "/api/media/abc/series?offset=ten",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Non numeric season",
			path:           "/api/media/abc/series?season=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Negative season",
			path:           "/api/media/abc/series?season=-2",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSeriesService)
			if tt.expectService {
				svc.On("Resolve", mock.Anything, mock.Anything).Return(nil, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			newSeriesRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestSeriesHandler_Resolve_EmptySeasonSelectsAll(t *testing.T) {
	svc := new(MockSeriesService)
	svc.On("Resolve", mock.Anything, mock.MatchedBy(func(req *service.SeriesRequest) bool {
		return req.SeasonFilter != nil && *req.SeasonFilter == ""
	})).Return(&model.SeriesView{State: model.SeriesResolved}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/media/abc/series?season=", nil)
	w := httptest.NewRecorder()
	newSeriesRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSeriesHandler_Resolve_InvalidBody(t *testing.T) {
	svc := new(MockSeriesService)

	req := httptest.NewRequest(http.MethodPost, "/api/media/abc/series", bytes.NewBufferString(`{nope`))
	w := httptest.NewRecorder()
	newSeriesRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}
