package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
	"github.com/riskibarqy/scorekeeper/internal/usecase"
	"github.com/sourcegraph/conc"
	"github.com/valyala/bytebufferpool"
)

const (
	defaultStreamSendBuffer = 256
	streamWriteWait         = 10 * time.Second
	streamPongWait          = 60 * time.Second
	streamPingPeriod        = streamPongWait * 9 / 10
	streamMaxInboundBytes   = 512
)

// StreamMetrics tracks connected stream clients.
type StreamMetrics interface {
	StreamClientsChanged(delta int)
}

type StreamHubConfig struct {
	SendBuffer     int
	AllowedOrigins []string
}

// StreamHub pushes every session state change to connected WebSocket
// clients. A client that cannot keep up with its send buffer is dropped.
type StreamHub struct {
	upgrader   websocket.Upgrader
	sendBuffer int
	metrics    StreamMetrics
	logger     *logging.Logger

	mu      sync.Mutex
	clients map[*streamClient]struct{}
	last    []byte
	closed  bool
}

type streamClient struct {
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	stopOnce sync.Once
}

type streamFrame struct {
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Data   matchSessionDTO `json:"data"`
}

func NewStreamHub(cfg StreamHubConfig, metrics StreamMetrics, logger *logging.Logger) *StreamHub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultStreamSendBuffer
	}

	h := &StreamHub{
		sendBuffer: cfg.SendBuffer,
		metrics:    metrics,
		logger:     logging.OrDefault(logger).Named("stream"),
		clients:    make(map[*streamClient]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

// OnStateChange implements usecase.StateObserver.
func (h *StreamHub) OnStateChange(ctx context.Context, change usecase.StateChange) {
	ctx, span := startSpan(ctx, "httpapi.StreamHub.Broadcast")
	defer span.End()

	frame, err := encodeStreamFrame(change)
	if err != nil {
		h.logger.ErrorContext(ctx, "encode stream frame failed", "action", string(change.Action), "error", err)
		return
	}
	h.broadcast(frame)
}

func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	client := newStreamClient(conn, h.sendBuffer)
	if !h.register(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(streamWriteWait))
		_ = conn.Close()
		return
	}

	go h.writePump(client)
	h.readPump(client)
}

// Close disconnects every client and rejects new ones.
func (h *StreamHub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*streamClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*streamClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		h.clientsChanged(-1)
		c.stop()
	}
}

func (h *StreamHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func newStreamClient(conn *websocket.Conn, buffer int) *streamClient {
	return &streamClient{
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *streamClient) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// register adds the client and queues the latest frame so it starts from the
// current state.
func (h *StreamHub) register(c *streamClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.clientsChanged(1)
	return true
}

func (h *StreamHub) drop(c *streamClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		h.clientsChanged(-1)
	}
	c.stop()
}

func (h *StreamHub) broadcast(frame []byte) {
	h.mu.Lock()
	h.last = frame
	clients := make([]*streamClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	var wg conc.WaitGroup
	for _, c := range clients {
		wg.Go(func() {
			select {
			case <-c.done:
			case c.send <- frame:
			default:
				h.logger.Warn("dropping slow stream client", "buffer", cap(c.send))
				h.drop(c)
			}
		})
	}
	wg.Wait()
}

func (h *StreamHub) writePump(c *streamClient) {
	ticker := time.NewTicker(streamPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(streamWriteWait))
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// readPump only services control frames; clients never send commands.
func (h *StreamHub) readPump(c *streamClient) {
	defer h.drop(c)

	c.conn.SetReadLimit(streamMaxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHub) clientsChanged(delta int) {
	if h.metrics != nil {
		h.metrics.StreamClientsChanged(delta)
	}
}

func encodeStreamFrame(change usecase.StateChange) ([]byte, error) {
	frameType := "state"
	if change.Action == usecase.ActionAbandon {
		frameType = "abandoned"
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	err := sonic.ConfigDefault.NewEncoder(buf).Encode(streamFrame{
		Type:   frameType,
		Action: string(change.Action),
		Data:   snapshotToDTO(change.Snapshot),
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", change.Action, err)
	}
	return append([]byte(nil), bytes.TrimRight(buf.B, "\n")...), nil
}

// originChecker allows same-origin requests, requests without an Origin
// header, and the configured CORS origins.
func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowAll := false
	allowMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		candidate := strings.TrimSpace(origin)
		switch candidate {
		case "":
		case "*":
			allowAll = true
		default:
			allowMap[candidate] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" || allowAll {
			return true
		}
		if _, ok := allowMap[origin]; ok {
			return true
		}
		parsed, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(parsed.Host, r.Host)
	}
}
