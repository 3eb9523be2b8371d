package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/evently/evently/internal/hub"
	"github.com/labstack/echo/v4"
)

// WSHandler serves the live announcement feed over a websocket.
type WSHandler struct {
	hub *hub.Hub
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(h *hub.Hub) *WSHandler {
	return &WSHandler{hub: h}
}

const writeTimeout = 10 * time.Second

// Announcements handles GET /ws/announcements. The connection is write-only
// from the client's perspective: frames produced by the announcer are pushed
// until the client disconnects.
func (h *WSHandler) Announcements(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	subscriber := &hub.Subscriber{Send: make(chan []byte, 16)}
	h.hub.Register <- subscriber

	ctx := c.Request().Context()
	go h.readPump(ctx, conn, subscriber)
	h.writePump(ctx, conn, subscriber)
	return nil
}

// readPump drains (and discards) client frames so the connection close is
// noticed promptly.
func (h *WSHandler) readPump(ctx context.Context, conn *websocket.Conn, subscriber *hub.Subscriber) {
	defer func() {
		h.hub.Unregister <- subscriber
	}()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
				websocket.CloseStatus(err) != websocket.StatusGoingAway {
				slog.Debug("Websocket read ended", "error", err)
			}
			return
		}
	}
}

// writePump forwards hub frames to the client until the subscriber channel
// closes or a write fails.
func (h *WSHandler) writePump(ctx context.Context, conn *websocket.Conn, subscriber *hub.Subscriber) {
	defer conn.Close(websocket.StatusNormalClosure, "")
	for frame := range subscriber.Send {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := conn.Write(writeCtx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			slog.Debug("Websocket write failed", "error", err)
			return
		}
	}
}
