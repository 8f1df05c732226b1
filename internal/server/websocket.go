package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/arena/internal/core/observability/log"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.String("remote_addr", r.RemoteAddr), log.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, s.config.ClientBuffer),
	}
	s.hub.register(c)
	s.hub.send(c, Message{Type: MessageState, State: s.sim.State().String(), RunID: s.sim.RunID()})
	s.hub.send(c, Message{Type: MessageHealth, Health: s.sim.Snapshot()})

	go s.writePump(c)
	s.readPump(r.Context(), c)
}

// readPump handles client commands until the connection fails.
func (s *Server) readPump(ctx context.Context, c *client) {
	logger := s.logger.With(log.String("client_id", c.id))
	defer func() {
		s.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(s.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", log.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err = json.Unmarshal(data, &msg); err != nil {
			logger.Debug("invalid client message", log.Error(err))
			continue
		}
		switch msg.Type {
		case MessageResize:
			cmdCtx, cancel := context.WithTimeout(ctx, s.config.CommandTimeout)
			err = s.sim.Resize(cmdCtx, msg.Width, msg.Height)
			cancel()
			if err != nil {
				logger.Warn("resize failed", log.Error(err))
			}
		default:
			logger.Debug("unknown client message", log.String("type", msg.Type))
		}
	}
}

// writePump is the only writer on c.conn.
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
