package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livejourney/internal/config"
	"livejourney/internal/domain/hotplace"
)

type stubDetector struct {
	places []hotplace.HotPlace
}

func (s *stubDetector) Start(context.Context) error { return nil }
func (s *stubDetector) Stop(context.Context) error  { return nil }

func (s *stubDetector) Refresh(context.Context) ([]hotplace.HotPlace, error) {
	return s.places, nil
}

func (s *stubDetector) GetHotPlaces(context.Context, hotplace.Filter) ([]hotplace.HotPlace, error) {
	return s.places, nil
}

func (s *stubDetector) GetHotPlace(_ context.Context, key string) (*hotplace.HotPlace, error) {
	for i := range s.places {
		if s.places[i].Key == key {
			return &s.places[i], nil
		}
	}
	return nil, hotplace.ErrNotFound
}

func (s *stubDetector) RegisterHandler(func([]hotplace.HotPlace) error) error { return nil }

type stubIngester struct {
	observations int
}

func (s *stubIngester) IngestObservation(context.Context, string, []byte) (hotplace.Observation, error) {
	s.observations++
	return hotplace.Observation{ID: "o1"}, nil
}

func (s *stubIngester) IngestSearch(context.Context, string, []byte) (hotplace.SearchEvent, error) {
	return hotplace.SearchEvent{ID: "s1"}, nil
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Host:         "127.0.0.1",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		CorsOrigins:  []string{"*"},
	}
}

func newTestServer() (*Server, *stubIngester) {
	ingester := &stubIngester{}
	srv := NewServer(
		testServerConfig(),
		&stubDetector{places: []hotplace.HotPlace{{Key: "해운대", Score: 1}}},
		ingester,
		nil,
	)
	return srv, ingester
}

func TestServer_Routes(t *testing.T) {
	srv, ingester := newTestServer()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/hotplaces", "", http.StatusOK},
		{http.MethodGet, "/api/v1/hotplaces/%ED%95%B4%EC%9A%B4%EB%8C%80", "", http.StatusOK},
		{http.MethodGet, "/api/v1/hotplaces/missing", "", http.StatusNotFound},
		{http.MethodPost, "/api/v1/hotplaces/refresh", "", http.StatusOK},
		{http.MethodPost, "/api/v1/observations", "{}", http.StatusCreated},
		{http.MethodPost, "/api/v1/searches", "{}", http.StatusCreated},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/ws/hotplaces", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, 1, ingester.observations)
}

func TestServer_MetricsExposeRequests(t *testing.T) {
	srv, _ := newTestServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hotplaces", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hotplace_api_requests_total{method="GET",route="/api/v1/hotplaces`)
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/hotplaces", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RateLimitsWrites(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	srv := NewServer(cfg, &stubDetector{}, &stubIngester{}, nil)

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/searches", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// reads are not limited
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hotplaces", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
