package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/shell"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/providers/oracle"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/clock"
)

type fakeStreamer struct {
	chunks []string
	err    error
	gate   chan struct{} // when set, the reply waits until it is closed
}

func (f *fakeStreamer) Stream(ctx context.Context, _ []oracle.Message, prompt string, fn func(string) error) error {
	if strings.TrimSpace(prompt) == "" {
		return oracle.ErrEmptyPrompt
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, c := range f.chunks {
		if err := fn(c); err != nil {
			return err
		}
	}
	return f.err
}

type wsHarness struct {
	conn    *websocket.Conn
	metrics *monitoring.Metrics
}

func dial(t *testing.T, streamer Streamer) *wsHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loop := shell.NewLoop(nil)
	loop.Start()
	t.Cleanup(loop.Stop)

	metrics := monitoring.NewMetrics()
	ctrl := shell.NewController(shell.Options{Loop: loop, Scheduler: clock.NewFake(), Metrics: metrics})

	router := gin.New()
	router.GET("/stream", NewHandler(ctrl, streamer, metrics, nil).HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	h := &wsHarness{conn: conn, metrics: metrics}
	h.expect(t, "system")
	h.expect(t, "state")
	return h
}

func (h *wsHarness) sendMsg(t *testing.T, msg map[string]any) {
	t.Helper()
	require.NoError(t, h.conn.WriteJSON(msg))
}

// expect reads until a message of type typ arrives
func (h *wsHarness) expect(t *testing.T, typ string) map[string]any {
	t.Helper()
	require.NoError(t, h.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg map[string]any
		_, data, err := h.conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", typ)
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg["type"] == typ {
			return msg
		}
	}
}

func TestConnectCountsConnection(t *testing.T) {
	h := dial(t, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.WSConnections))
}

func TestOpenPushesEvents(t *testing.T) {
	h := dial(t, nil)

	h.sendMsg(t, map[string]any{"type": "open", "view": "chat"})

	sound := h.expect(t, "sound")
	assert.Equal(t, "open", sound["cue"])

	windows := h.expect(t, "windows")
	list := windows["windows"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "chat", list[0].(map[string]any)["view"])

	ack := h.expect(t, "ack")
	assert.Equal(t, "open", ack["action"])
	assert.Equal(t, true, ack["created"])
}

func TestFocusAndCloseRequireID(t *testing.T) {
	h := dial(t, nil)

	h.sendMsg(t, map[string]any{"type": "close"})
	msg := h.expect(t, "error")
	assert.Equal(t, "window id is required", msg["message"])

	h.sendMsg(t, map[string]any{"type": "close", "id": 5})
	ack := h.expect(t, "ack")
	assert.Equal(t, false, ack["changed"])
}

func TestSubmitWithoutSimulation(t *testing.T) {
	h := dial(t, nil)

	h.sendMsg(t, map[string]any{"type": "submit", "command": "help"})
	msg := h.expect(t, "error")
	assert.Equal(t, shell.ErrNoSimulation.Error(), msg["message"])
}

func TestPingAndUnknown(t *testing.T) {
	h := dial(t, nil)

	h.sendMsg(t, map[string]any{"type": "ping"})
	h.expect(t, "pong")

	h.sendMsg(t, map[string]any{"type": "dance"})
	msg := h.expect(t, "error")
	assert.Equal(t, "unknown message type", msg["message"])

	require.NoError(t, h.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = h.expect(t, "error")
	assert.Equal(t, "malformed message", msg["message"])
}

func TestChatStreamsTokens(t *testing.T) {
	h := dial(t, &fakeStreamer{chunks: []string{"Directive ", "received."}})

	h.sendMsg(t, map[string]any{"type": "chat", "message": "status"})
	assert.Equal(t, "Directive ", h.expect(t, "token")["content"])
	assert.Equal(t, "received.", h.expect(t, "token")["content"])
	h.expect(t, "complete")
}

func TestChatFallsBackOnError(t *testing.T) {
	h := dial(t, &fakeStreamer{err: errors.New("upstream 500")})

	h.sendMsg(t, map[string]any{"type": "chat", "message": "status"})
	assert.Equal(t, oracle.Fallback(oracle.ModeChat), h.expect(t, "token")["content"])
	h.expect(t, "complete")
}

func TestChatWithoutOracle(t *testing.T) {
	h := dial(t, nil)

	h.sendMsg(t, map[string]any{"type": "chat", "message": "status"})
	assert.Equal(t, oracle.Fallback(oracle.ModeChat), h.expect(t, "token")["content"])
	h.expect(t, "complete")
}

func TestChatEmptyPrompt(t *testing.T) {
	h := dial(t, &fakeStreamer{})

	h.sendMsg(t, map[string]any{"type": "chat", "message": "  "})
	msg := h.expect(t, "error")
	assert.Equal(t, oracle.ErrEmptyPrompt.Error(), msg["message"])
}

func TestSubmitRejectsMultiline(t *testing.T) {
	h := dial(t, nil)

	h.sendMsg(t, map[string]any{"type": "submit", "command": "help\nexit"})
	msg := h.expect(t, "error")
	assert.Contains(t, msg["message"], "single line")
}

func TestChatDoesNotBlockReads(t *testing.T) {
	gate := make(chan struct{})
	h := dial(t, &fakeStreamer{chunks: []string{"done"}, gate: gate})

	h.sendMsg(t, map[string]any{"type": "chat", "message": "long answer"})

	h.sendMsg(t, map[string]any{"type": "ping"})
	h.expect(t, "pong")

	h.sendMsg(t, map[string]any{"type": "chat", "message": "second"})
	msg := h.expect(t, "error")
	assert.Equal(t, errChatBusy.Error(), msg["message"])

	close(gate)
	assert.Equal(t, "done", h.expect(t, "token")["content"])
	h.expect(t, "complete")

	h.sendMsg(t, map[string]any{"type": "chat", "message": "third"})
	assert.Equal(t, "done", h.expect(t, "token")["content"])
}

func TestChatStopsWhenClientLeaves(t *testing.T) {
	gate := make(chan struct{})
	t.Cleanup(func() { close(gate) })
	h := dial(t, &fakeStreamer{chunks: []string{"late"}, gate: gate})

	h.sendMsg(t, map[string]any{"type": "chat", "message": "long answer"})
	h.sendMsg(t, map[string]any{"type": "ping"})
	h.expect(t, "pong")
	require.NoError(t, h.conn.Close())

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(h.metrics.WSConnections) == 0
	}, 2*time.Second, 10*time.Millisecond, "the handler returns once the chat is cancelled")
}
