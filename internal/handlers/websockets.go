package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"miheater/internal/logger"
	"miheater/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12

	wsTypeState = "state"
	wsTypeError = "error"
)

// wsEnvelope is every message written to a WebSocket client.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSession streams hub snapshots to one client.
type wsSession struct {
	conn    *websocket.Conn
	log     *logger.Logger
	updates <-chan models.HeaterState
	closed  chan struct{}
}

// @Summary      Stream heater state
// @Description  Upgrades to a WebSocket. Sends the current state, then every refreshed snapshot as {"type":"state","data":...}.
// @Tags         heater
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// subscribe first so no snapshot published after the initial read is lost
	updates, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	log := h.log
	if log == nil {
		log = logger.Nop()
	}
	s := &wsSession{conn: conn, log: log, updates: updates, closed: make(chan struct{})}
	go s.readLoop()

	ctx := c.Request.Context()
	initial := wsEnvelope{Type: wsTypeState}
	if st, err := h.services.Monitoring.GetState(ctx); err != nil {
		log.Errorw("ws_get_state_failed", "err", err)
		initial = wsEnvelope{Type: wsTypeError, Error: errGetState}
	} else {
		initial.Data = st
	}
	if err := s.send(initial); err != nil {
		log.Infow("ws_write_failed_initial", "err", err)
		return
	}
	s.pump(ctx)
}

func (h *Handler) logw(msg string, kv ...interface{}) {
	if h.log != nil {
		h.log.Errorw(msg, kv...)
	}
}

// pump forwards snapshots and keeps the connection alive with pings until
// the client leaves or ctx ends.
func (s *wsSession) pump(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-s.closed:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case st := <-s.updates:
			if err := s.send(wsEnvelope{Type: wsTypeState, Data: st}); err != nil {
				s.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// readLoop discards client frames so pongs are handled, and closes
// s.closed once the peer is gone.
func (s *wsSession) readLoop() {
	defer close(s.closed)
	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}

func (s *wsSession) send(msg wsEnvelope) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}
