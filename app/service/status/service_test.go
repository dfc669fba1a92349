package status

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gembot/app/config"
	"gembot/app/service/state"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newTestServer(stateSvc *state.Service) *Service {
	cfg := &config.Config{}
	cfg.Telegram.Token = "test-token"
	cfg.Telegram.Username = "TestBot"
	cfg.Telegram.AdminID = 99
	cfg.Gemini.APIKey = "test-key"
	cfg.Limits.RateWindowSeconds = 60
	cfg.Limits.RateMaxMessages = 10
	cfg.Limits.HistorySize = 20
	cfg.Limits.MaxMessageLength = 4096
	cfg.Status.Port = 5000

	s := &Service{
		cfg:      cfg,
		stateSvc: stateSvc,
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
	}
	s.setupRoutes()

	return s
}

func getJSON(t *testing.T, s *Service, path string) (int, map[string]any) {
	t.Helper()

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))

	return resp.StatusCode, payload
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(state.NewWithLimits(time.Minute, 10, 20))

	code, payload := getJSON(t, s, "/health")

	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "healthy", payload["status"])

	services, ok := payload["services"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "configured", services["gemini_api"])
	require.Equal(t, "configured", services["telegram_api"])
}

func TestStatusEndpointExposesStableFields(t *testing.T) {
	stateSvc := state.NewWithLimits(time.Minute, 10, 20)
	stateSvc.TryHandleMessage(1, "hello", time.Now())
	stateSvc.RecordImageEvent(state.ImageAnalyzed)
	stateSvc.RecordError()

	s := newTestServer(stateSvc)

	code, payload := getJSON(t, s, "/status")

	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "online", payload["status"])
	require.Contains(t, payload, "uptime_seconds")

	stats, ok := payload["statistics"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 1, stats["messages_processed"])
	require.EqualValues(t, 1, stats["images_analyzed"])
	require.EqualValues(t, 0, stats["images_generated"])
	require.EqualValues(t, 1, stats["errors"])
	require.EqualValues(t, 1, stats["active_users"])
}

func TestMetricsEndpoint(t *testing.T) {
	stateSvc := state.NewWithLimits(time.Minute, 10, 20)
	stateSvc.TryHandleMessage(1, "a", time.Now())
	stateSvc.RecordAssistantTurn(1, "b")
	stateSvc.TryHandleMessage(2, "c", time.Now())

	s := newTestServer(stateSvc)

	code, payload := getJSON(t, s, "/metrics")

	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 2, payload["messages_total"])
	require.EqualValues(t, 2, payload["active_users"])
	require.EqualValues(t, 3, payload["context_size_total"])
	require.EqualValues(t, 0, payload["errors_total"])
}

func TestSummaryEndpointErrorRate(t *testing.T) {
	stateSvc := state.NewWithLimits(time.Minute, 10, 20)
	for i := 0; i < 4; i++ {
		stateSvc.TryHandleMessage(int64(i), "msg", time.Now())
	}
	stateSvc.RecordError()

	s := newTestServer(stateSvc)

	code, payload := getJSON(t, s, "/api/stats/summary")

	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, payload["online"])
	require.EqualValues(t, 4, payload["total_messages"])
	require.InDelta(t, 25.0, payload["error_rate"].(float64), 0.001)
}

func TestSummaryEndpointZeroMessagesHasZeroErrorRate(t *testing.T) {
	s := newTestServer(state.NewWithLimits(time.Minute, 10, 20))

	_, payload := getJSON(t, s, "/api/stats/summary")

	require.InDelta(t, 0.0, payload["error_rate"].(float64), 0.001)
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	s := newTestServer(state.NewWithLimits(time.Minute, 10, 20))

	code, payload := getJSON(t, s, "/nope")

	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Not found", payload["error"])
	require.Contains(t, payload, "available_endpoints")
}
