package handlers

import (
	"html"
	"net/http"
	"strconv"
	"strings"

	"nxdndash/internal/database/repositories"
	"nxdndash/internal/display"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HistoryItem is one archived transmission
type HistoryItem struct {
	Time            string `json:"time"`
	Callsign        string `json:"callsign"`
	Target          string `json:"target"`
	Repeater        string `json:"repeater"`
	Duration        int    `json:"duration"`
	CallsignDisplay string `json:"callsign_display"`
	RepeaterDisplay string `json:"repeater_display"`
	QRZLink         string `json:"qrz_link,omitempty"`
}

// HistoryHandler serves archived transmissions
type HistoryHandler struct {
	repo      repositories.HeardRepository
	formatter *display.Formatter
	logger    *pterm.Logger
}

// NewHistoryHandler creates a history handler; repo is nil when archiving is off
func NewHistoryHandler(repo repositories.HeardRepository, formatter *display.Formatter, logger *pterm.Logger) *HistoryHandler {
	return &HistoryHandler{
		repo:      repo,
		formatter: formatter,
		logger:    logger,
	}
}

// GetHistory returns archived transmissions newest first
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "History archive is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= maxHistoryLimit {
			limit = l
		}
	}
	callsign := strings.ToUpper(strings.TrimSpace(c.Query("callsign")))

	records, err := h.repo.FindRecent(limit, callsign)
	if err != nil {
		h.logger.WithCaller().Error("Failed to get history", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to get history"})
		return
	}

	f := h.formatter
	items := make([]HistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, HistoryItem{
			Time:            f.Time(record.Timestamp),
			Callsign:        record.Callsign,
			Target:          html.EscapeString(record.Target),
			Repeater:        record.Gateway,
			Duration:        record.DurationSeconds,
			CallsignDisplay: f.HeardCallsign(record.Callsign),
			RepeaterDisplay: f.Identifier(record.Gateway),
			QRZLink:         f.QRZLink(record.Callsign),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(items),
		"history": items,
	})
}
