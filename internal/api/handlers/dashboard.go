package handlers

import (
	"net/http"
	"strconv"

	"nxdndash/internal/reflector"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// DashboardHandler serves the live reflector views
type DashboardHandler struct {
	builder *DocumentBuilder
	logger  *pterm.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(builder *DocumentBuilder, logger *pterm.Logger) *DashboardHandler {
	return &DashboardHandler{
		builder: builder,
		logger:  logger,
	}
}

// GetDashboard returns the full dashboard document
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	doc := h.builder.Build()
	h.logger.Trace("Served dashboard",
		h.logger.Args("heard", len(doc.LastHeard), "repeaters", doc.RepeaterCount, "transmitting", doc.TxStatus != nil))
	c.JSON(http.StatusOK, doc)
}

// GetTx returns only the transmission in progress
func (h *DashboardHandler) GetTx(c *gin.Context) {
	snapshot := h.builder.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": snapshot.GeneratedAt.Unix(),
		"tx_status": h.builder.TxStatus(snapshot.Active),
	})
}

// GetHeard returns the last heard list
func (h *DashboardHandler) GetHeard(c *gin.Context) {
	limit := heardLimit(c.Query("limit"))
	snapshot := h.builder.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"timestamp":  snapshot.GeneratedAt.Unix(),
		"last_heard": h.builder.LastHeard(snapshot.RecentHeard(limit)),
	})
}

// GetRepeaters returns the linked repeaters
func (h *DashboardHandler) GetRepeaters(c *gin.Context) {
	snapshot := h.builder.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"timestamp":      snapshot.GeneratedAt.Unix(),
		"repeaters":      h.builder.Repeaters(snapshot.Repeaters),
		"repeater_count": snapshot.RepeaterCount(),
	})
}

// heardLimit parses ?limit=, clamping to 1..HeardLimit
func heardLimit(param string) int {
	limit := reflector.HeardLimit
	if param == "" {
		return limit
	}
	l, err := strconv.Atoi(param)
	if err != nil {
		return limit
	}
	if l < 1 {
		return 1
	}
	if l > reflector.HeardLimit {
		return reflector.HeardLimit
	}
	return l
}
