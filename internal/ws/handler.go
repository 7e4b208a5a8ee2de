package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/shell"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/window"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/providers/oracle"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
	chatTimeout    = 2 * time.Minute
	outboxSize     = 64
)

var (
	errClientGone = errors.New("client disconnected")
	errChatBusy   = errors.New("a chat reply is already streaming")
)

// Streamer streams chat replies chunk by chunk
type Streamer interface {
	Stream(ctx context.Context, history []oracle.Message, prompt string, fn func(chunk string) error) error
}

// Inbound is a message sent by the browser
type Inbound struct {
	Type    string           `json:"type"`
	View    string           `json:"view,omitempty"`
	ID      *int             `json:"id,omitempty"`
	Command string           `json:"command,omitempty"`
	Message string           `json:"message,omitempty"`
	History []oracle.Message `json:"history,omitempty"`
}

// Handler manages WebSocket connections. Every connection receives the
// shell's events as they are published.
type Handler struct {
	ctrl     *shell.Controller
	oracle   Streamer
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. oracle may be nil, in which
// case chat is answered with the fallback text.
func NewHandler(ctrl *shell.Controller, oracle Streamer, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ctrl:    ctrl,
		oracle:  oracle,
		metrics: metrics,
		logger:  logger.Named("ws"),
		upgrader: websocket.Upgrader{
			// Origins are enforced by the CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	events, unsubscribe := h.ctrl.Bus().Subscribe()
	defer unsubscribe()

	cl := &client{
		h:          h,
		conn:       conn,
		out:        make(chan []byte, outboxSize),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	go cl.writePump(events)

	reqCtx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	cl.send(map[string]interface{}{
		"type":    "system",
		"message": "Connected to ZERO HUB",
	})
	if state, err := h.ctrl.State(reqCtx); err == nil {
		cl.send(map[string]interface{}{"type": "state", "state": state})
	}

	cl.readPump(reqCtx)
	cancel()
	cl.chats.Wait()
	close(cl.done)
	<-cl.writerDone
}

func (h *Handler) dispatch(ctx context.Context, cl *client, msg Inbound) {
	switch msg.Type {
	case "open":
		view, err := window.ParseView(msg.View)
		if err != nil {
			cl.sendError(err.Error())
			return
		}
		rec, created, err := h.ctrl.HandleOpenApp(ctx, view)
		if err != nil {
			cl.sendError(err.Error())
			return
		}
		cl.ack(msg.Type, map[string]interface{}{"window": rec, "created": created})

	case "focus", "close":
		if msg.ID == nil {
			cl.sendError("window id is required")
			return
		}
		var (
			changed bool
			err     error
		)
		if msg.Type == "focus" {
			changed, err = h.ctrl.HandleFocusApp(ctx, *msg.ID)
		} else {
			changed, err = h.ctrl.HandleCloseApp(ctx, *msg.ID)
		}
		if err != nil {
			cl.sendError(err.Error())
			return
		}
		cl.ack(msg.Type, map[string]interface{}{"id": *msg.ID, "changed": changed})

	case "submit":
		if err := utils.ValidateCommand(msg.Command); err != nil {
			cl.sendError(err.Error())
			return
		}
		accepted, err := h.ctrl.HandleSubmitCommand(ctx, msg.Command)
		if err != nil {
			cl.sendError(err.Error())
			return
		}
		cl.ack(msg.Type, map[string]interface{}{"accepted": accepted})

	case "state":
		state, err := h.ctrl.State(ctx)
		if err != nil {
			cl.sendError(err.Error())
			return
		}
		cl.send(map[string]interface{}{"type": "state", "state": state})

	case "chat":
		h.startChat(ctx, cl, msg)

	case "ping":
		cl.send(map[string]interface{}{"type": "pong"})

	default:
		cl.sendError("unknown message type")
	}
}

// startChat streams the reply off the read goroutine so pongs and other
// messages keep flowing. One chat runs per connection at a time.
func (h *Handler) startChat(ctx context.Context, cl *client, msg Inbound) {
	turns := make([]string, len(msg.History))
	for i, m := range msg.History {
		turns[i] = m.Content
	}
	if err := utils.ValidatePrompt(msg.Message); err != nil {
		cl.sendError(err.Error())
		return
	}
	if err := utils.ValidateHistory(turns); err != nil {
		cl.sendError(err.Error())
		return
	}
	if !cl.chatting.CompareAndSwap(false, true) {
		cl.sendError(errChatBusy.Error())
		return
	}

	cl.chats.Add(1)
	go func() {
		defer cl.chats.Done()
		final := h.streamChat(ctx, cl, msg)
		// The slot is free before the closing message goes out
		cl.chatting.Store(false)
		if final != nil {
			cl.send(final)
		}
	}()
}

// streamChat forwards reply chunks as tokens and returns the message that
// ends the exchange, or nil when the connection is gone.
func (h *Handler) streamChat(reqCtx context.Context, cl *client, msg Inbound) map[string]interface{} {
	ctx, cancel := context.WithTimeout(reqCtx, chatTimeout)
	defer cancel()

	var err error
	if h.oracle == nil {
		err = oracle.ErrDisabled
	} else {
		err = h.oracle.Stream(ctx, msg.History, msg.Message, func(chunk string) error {
			if !cl.token(chunk) {
				return errClientGone
			}
			return nil
		})
	}

	switch {
	case err == nil:
	case errors.Is(err, errClientGone), reqCtx.Err() != nil:
		return nil
	case errors.Is(err, oracle.ErrEmptyPrompt):
		return errorMessage(err.Error())
	default:
		h.logger.Warn("Chat stream failed, using fallback", zap.Error(err))
		cl.token(oracle.Fallback(oracle.ModeChat))
	}

	return map[string]interface{}{
		"type":      "complete",
		"timestamp": time.Now().Unix(),
	}
}

// client is one connection. The read pump runs on the handler goroutine;
// all writes go through the write pump.
type client struct {
	h          *Handler
	conn       *websocket.Conn
	out        chan []byte
	done       chan struct{}
	writerDone chan struct{}

	chatting atomic.Bool
	chats    sync.WaitGroup
}

func (cl *client) readPump(ctx context.Context) {
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg Inbound
		if err := sonic.Unmarshal(data, &msg); err != nil {
			cl.sendError("malformed message")
			continue
		}
		cl.h.record("in", msg.Type)
		cl.h.dispatch(ctx, cl, msg)
	}
}

func (cl *client) writePump(events <-chan shell.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
		close(cl.writerDone)
	}()

	for {
		select {
		case data := <-cl.out:
			if err := cl.write(data); err != nil {
				return
			}

		case e, ok := <-events:
			if !ok {
				return
			}
			data, err := sonic.Marshal(e)
			if err != nil {
				cl.h.logger.Error("Failed to encode event", zap.Error(err))
				continue
			}
			cl.h.record("out", string(e.Type))
			if err := cl.write(data); err != nil {
				return
			}

		case <-ticker.C:
			if err := cl.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-cl.done:
			_ = cl.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (cl *client) write(data []byte) error {
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return cl.conn.WriteMessage(websocket.TextMessage, data)
}

// send queues a message for the write pump. It reports false once the
// connection is gone.
func (cl *client) send(msg map[string]interface{}) bool {
	data, err := sonic.Marshal(msg)
	if err != nil {
		cl.h.logger.Error("Failed to encode message", zap.Error(err))
		return true
	}
	select {
	case cl.out <- data:
		if t, ok := msg["type"].(string); ok {
			cl.h.record("out", t)
		}
		return true
	case <-cl.writerDone:
		return false
	case <-cl.done:
		return false
	}
}

func (cl *client) token(chunk string) bool {
	return cl.send(map[string]interface{}{
		"type":      "token",
		"content":   chunk,
		"timestamp": time.Now().Unix(),
	})
}

func (cl *client) ack(action string, fields map[string]interface{}) {
	fields["type"] = "ack"
	fields["action"] = action
	cl.send(fields)
}

func (cl *client) sendError(msg string) {
	cl.send(errorMessage(msg))
}

func errorMessage(msg string) map[string]interface{} {
	return map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	}
}

func (h *Handler) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}
