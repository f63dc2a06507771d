package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
	"github.com/riskibarqy/scorekeeper/internal/usecase"
	"github.com/stretchr/testify/require"
)

type countingStreamMetrics struct {
	clients atomic.Int64
}

func (m *countingStreamMetrics) StreamClientsChanged(delta int) {
	m.clients.Add(int64(delta))
}

func stateChange(action usecase.Action, p1Score int) usecase.StateChange {
	return usecase.StateChange{
		Action: action,
		Snapshot: usecase.MatchSnapshot{
			MatchID: "m-1",
			State: scoring.MatchState{
				Player1:         scoring.Player{ID: 1, Name: "Ana", Score: p1Score},
				Player2:         scoring.Player{ID: 2, Name: "Ben"},
				ServingPlayerID: scoring.SomePlayer(1),
			},
			Rules: scoring.DefaultRules(),
		},
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) streamFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame streamFrame
	require.NoError(t, sonic.Unmarshal(raw, &frame))
	return frame
}

func TestStreamHubBroadcastsStateChanges(t *testing.T) {
	metrics := &countingStreamMetrics{}
	hub := NewStreamHub(StreamHubConfig{SendBuffer: 4}, metrics, logging.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.OnStateChange(context.Background(), stateChange(usecase.ActionStart, 0))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readFrame(t, conn)
	require.Equal(t, "state", first.Type)
	require.Equal(t, "start", first.Action)
	require.Equal(t, "m-1", first.Data.MatchID)
	require.EqualValues(t, 1, metrics.clients.Load())

	hub.OnStateChange(context.Background(), stateChange(usecase.ActionPoint, 1))
	second := readFrame(t, conn)
	require.Equal(t, "point", second.Action)
	require.Equal(t, 1, second.Data.State.Player1.Score)

	hub.OnStateChange(context.Background(), stateChange(usecase.ActionAbandon, 1))
	require.Equal(t, "abandoned", readFrame(t, conn).Type)

	hub.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	require.EqualValues(t, 0, metrics.clients.Load())
}

func TestStreamHubDropsSlowClient(t *testing.T) {
	metrics := &countingStreamMetrics{}
	hub := NewStreamHub(StreamHubConfig{SendBuffer: 1}, metrics, logging.NewNop())

	client := newStreamClient(nil, 1)
	require.True(t, hub.register(client))
	require.Equal(t, 1, hub.clientCount())

	hub.broadcast([]byte(`{"n":1}`))
	hub.broadcast([]byte(`{"n":2}`))

	require.Equal(t, 0, hub.clientCount())
	require.EqualValues(t, 0, metrics.clients.Load())
	select {
	case <-client.done:
	default:
		t.Fatalf("expected slow client to be stopped")
	}
}

func TestStreamHubRejectsAfterClose(t *testing.T) {
	hub := NewStreamHub(StreamHubConfig{}, nil, logging.NewNop())
	hub.Close()
	require.False(t, hub.register(newStreamClient(nil, 1)))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://board.example.com"})

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/v1/match/stream", nil)
	require.True(t, check(req), "no origin header")

	req.Header.Set("Origin", "https://board.example.com")
	require.True(t, check(req), "configured origin")

	req.Header.Set("Origin", "http://api.example.com")
	require.True(t, check(req), "same origin")

	req.Header.Set("Origin", "https://evil.example.com")
	require.False(t, check(req), "foreign origin")

	require.True(t, originChecker([]string{"*"})(req), "wildcard")
}
