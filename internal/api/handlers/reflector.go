package handlers

import (
	"net/http"
	"time"

	"nxdndash/internal/config"
	"nxdndash/internal/discovery"
	"nxdndash/internal/ingestion"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// StatusProvider reports background ingestion state
type StatusProvider interface {
	GetStatus() map[string]interface{}
}

// ReflectorHandler describes the reflector this dashboard is reading
type ReflectorHandler struct {
	ini      *config.ReflectorINI
	location *discovery.Location
	status   StatusProvider
	stats    map[string]func() interface{}
	logger   *pterm.Logger
}

// NewReflectorHandler creates a new reflector info handler; status may be nil
func NewReflectorHandler(ini *config.ReflectorINI, location *discovery.Location, status StatusProvider, logger *pterm.Logger) *ReflectorHandler {
	return &ReflectorHandler{
		ini:      ini,
		location: location,
		status:   status,
		stats:    make(map[string]func() interface{}),
		logger:   logger,
	}
}

// WithStats adds a named stats source reported under "ingestion"
func (h *ReflectorHandler) WithStats(name string, stats func() interface{}) *ReflectorHandler {
	h.stats[name] = stats
	return h
}

// GetReflector returns reflector identity and log location
func (h *ReflectorHandler) GetReflector(c *gin.Context) {
	response := gin.H{
		"success":  true,
		"ini_path": h.ini.Path(),
		"tg":       h.ini.Item("General", "TG"),
		"port":     h.ini.Item("Network", "Port"),
		"log": gin.H{
			"dir":    h.location.Dir,
			"prefix": h.location.Prefix,
			"source": h.location.Source,
			"valid":  h.location.Valid,
			"file":   ingestion.DailyFileName(h.location.Prefix, time.Now()),
		},
	}
	if ingestion := h.ingestionStatus(); len(ingestion) > 0 {
		response["ingestion"] = ingestion
	}
	c.JSON(http.StatusOK, response)
}

func (h *ReflectorHandler) ingestionStatus() map[string]interface{} {
	status := make(map[string]interface{}, len(h.stats)+4)
	if h.status != nil {
		for k, v := range h.status.GetStatus() {
			status[k] = v
		}
	}
	for name, stats := range h.stats {
		status[name] = stats()
	}
	return status
}
