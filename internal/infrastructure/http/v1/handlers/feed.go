package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tokopos/internal/feed"
	"tokopos/pkg/logger"
)

const (
	feedWriteTimeout = 10 * time.Second
	feedPingInterval = 30 * time.Second
)

// FeedHandler bridges the in-process change feed to websocket clients.
// Each connection gets one subscription: a snapshot message first, then
// every committed change, until either side goes away.
type FeedHandler struct {
	hub      *feed.Hub
	upgrader websocket.Upgrader
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(hub *feed.Hub) *FeedHandler {
	return &FeedHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Subscribe handles GET /feed.
func (h *FeedHandler) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		logger.Warn(ctx, "websocket upgrade failed", "error", err)
		return
	}

	sub, err := h.hub.Subscribe()
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed unavailable"),
			time.Now().Add(feedWriteTimeout))
		_ = conn.Close()
		return
	}

	logger.Info(ctx, "feed subscriber connected", "subscription_id", sub.ID)

	// Read pump: discard client frames, detect disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		sub.Cancel()
		_ = conn.Close()
		logger.Info(ctx, "feed subscriber disconnected", "subscription_id", sub.ID)
	}()

	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				// dropped as a slow subscriber or hub shut down
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription closed"),
					time.Now().Add(feedWriteTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RegisterRoutes wires the feed endpoint.
func (h *FeedHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/feed", h.Subscribe)
}
