package campaign_routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	internal_callback "github.com/rapidaai/campaign/api/campaign-api/internal/callback"
	internal_callregistry "github.com/rapidaai/campaign/api/campaign-api/internal/callregistry"
	internal_dispatcher "github.com/rapidaai/campaign/api/campaign-api/internal/dispatcher"
	internal_reporter "github.com/rapidaai/campaign/api/campaign-api/internal/reporter"
	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	internal_vonage_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony/vonage"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/rapidaai/campaign/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopGateway struct{}

func (nopGateway) Name() string { return "nop" }
func (nopGateway) Place(context.Context, internal_telephony.PlaceRequest) (string, error) {
	return "CA1", nil
}
func (nopGateway) Cancel(context.Context, string) error { return nil }

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func testConfig(provider string) *config.AppConfig {
	return &config.AppConfig{
		Name:              "campaign-api",
		Version:           "0.0.1",
		BaseUrl:           "https://calls.example.com",
		CompanyName:       "dowell",
		TelephonyProvider: provider,
		Campaign:          config.CampaignConfig{MaxParallelWorkers: 1, DefaultBatchSize: 10},
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := NewEngine(commons.NewNopLogger())
	engine.GET("/boom", func(c *gin.Context) { panic("secret internals") })

	w := serve(engine, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret internals")
}

func TestHealthCheckRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := commons.NewNopLogger()
	engine := NewEngine(logger)
	HealthCheckRoutes(testConfig(config.ProviderTwilio), engine, logger, nopGateway{}, metrics.NewMetrics())

	w := serve(engine, http.MethodGet, "/healthz/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "campaign-api")

	w = serve(engine, http.MethodGet, "/readiness/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"provider":"nop"`)

	w = serve(engine, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "campaign_placements_inflight")
}

func TestReadiness_WithoutGateway(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := commons.NewNopLogger()
	engine := NewEngine(logger)
	HealthCheckRoutes(testConfig(config.ProviderTwilio), engine, logger, nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, serve(engine, http.MethodGet, "/readiness/").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/metrics").Code)
}

func TestProviderRoutes(t *testing.T) {
	routes, err := ProviderRoutes(config.ProviderTwilio)
	require.NoError(t, err)
	assert.Equal(t, "/handle-call", routes.Answer)

	routes, err = ProviderRoutes(config.ProviderVonage)
	require.NoError(t, err)
	assert.Equal(t, internal_vonage_telephony.Routes, routes)

	_, err = ProviderRoutes("plivo")
	assert.Error(t, err)
}

func TestWebhookApiRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := commons.NewNopLogger()
	registry := internal_callregistry.NewRegistry(logger)
	ingestor := internal_callback.NewIngestor(logger, registry, nil)

	tests := []struct {
		provider   string
		registered string
		absent     string
	}{
		{config.ProviderTwilio, "/call-status", "/vonage/event"},
		{config.ProviderVonage, "/vonage/event", "/call-status"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			engine := NewEngine(logger)
			require.NoError(t, WebhookApiRoute(testConfig(tt.provider), engine, logger, ingestor))
			assert.NotEqual(t, http.StatusNotFound, serve(engine, http.MethodPost, tt.registered).Code)
			assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodPost, tt.absent).Code)
		})
	}

	assert.Error(t, WebhookApiRoute(testConfig("plivo"), NewEngine(logger), logger, ingestor))
}

func TestCampaignApiRoute_RateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := commons.NewNopLogger()
	registry := internal_callregistry.NewRegistry(logger)
	dispatcher := internal_dispatcher.NewDispatcher(logger, registry, nopGateway{},
		internal_telephony.NewCallbackBuilder("https://calls.example.com", internal_telephony.Routes{}))
	cfg := testConfig(config.ProviderTwilio)
	cfg.ControlRateLimit = "1-M"

	engine := NewEngine(logger)
	require.NoError(t, CampaignApiRoute(cfg, engine, logger, dispatcher, internal_reporter.NewReporter(logger, registry), nil))

	cancel := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cancel-calls", strings.NewReader(`{"call_sids":["x"]}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, cancel())
	assert.Equal(t, http.StatusTooManyRequests, cancel())
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/calls-status").Code)
}

func TestCampaignApiRoute_InvalidRateLimit(t *testing.T) {
	logger := commons.NewNopLogger()
	cfg := testConfig(config.ProviderTwilio)
	cfg.ControlRateLimit = "lots"
	err := CampaignApiRoute(cfg, NewEngine(logger), logger, nil, nil, nil)
	assert.Error(t, err)
}
