package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nxdndash/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// RealtimeHandler streams dashboard documents over Server-Sent Events
type RealtimeHandler struct {
	builder  *DocumentBuilder
	feed     *realtime.Feed
	interval time.Duration
	logger   *pterm.Logger
}

// NewRealtimeHandler creates a new realtime handler. Documents are pushed on
// every feed signal and at least once per interval; feed may be nil.
func NewRealtimeHandler(builder *DocumentBuilder, feed *realtime.Feed, interval time.Duration, logger *pterm.Logger) *RealtimeHandler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &RealtimeHandler{
		builder:  builder,
		feed:     feed,
		interval: interval,
		logger:   logger,
	}
}

// StreamDashboard streams the dashboard document via Server-Sent Events
func (h *RealtimeHandler) StreamDashboard(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	var signals <-chan struct{}
	if h.feed != nil {
		id, ch := h.feed.Subscribe()
		defer h.feed.Unsubscribe(id)
		signals = ch
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.Debug("Client connected to dashboard stream", h.logger.Args("client_ip", c.ClientIP()))

	if !h.send(c) {
		return
	}
	for {
		select {
		case <-c.Request.Context().Done():
			h.logger.Debug("Client disconnected from dashboard stream",
				h.logger.Args("client_ip", c.ClientIP()))
			return

		case _, ok := <-signals:
			if !ok {
				return
			}
			if !h.send(c) {
				return
			}

		case <-ticker.C:
			if !h.send(c) {
				return
			}
		}
	}
}

// send writes one document event, reporting whether the client is still there
func (h *RealtimeHandler) send(c *gin.Context) bool {
	data, err := json.Marshal(h.builder.Build())
	if err != nil {
		h.logger.Error("Failed to marshal dashboard", h.logger.Args("error", err))
		return true
	}

	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		h.logger.Debug("Failed to write SSE data", h.logger.Args("error", err))
		return false
	}
	c.Writer.Flush()
	return true
}
