package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/scorekeeper/internal/config"
	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		ServiceName:         "scorekeeper-test",
		HTTPAddr:            "127.0.0.1:0",
		ReadTimeout:         time.Second,
		WriteTimeout:        time.Second,
		StorageDriver:       config.StorageMemory,
		CacheEnabled:        true,
		CacheTTL:            time.Minute,
		RecorderWorkers:     1,
		RecorderSaveTimeout: time.Second,
		ActiveSaveTimeout:   time.Second,
		WSSendBuffer:        8,
		MetricsEnabled:      true,
		DefaultRules:        scoring.DefaultRules(),
	}
}

func TestNewServesHealthAndMetrics(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "scorekeeper_")
}

func TestNewStartsMatchThroughRouter(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	body := strings.NewReader(`{"player1_id":1,"player2_id":2,"player1_name":"Ada","player2_name":"Linus"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/match", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	snapshot, err := a.Session.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.State.Player1.ID)
}

func TestNewRejectsEmptyAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	_, err := New(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
}
