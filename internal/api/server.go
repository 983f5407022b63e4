package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"nxdndash/internal/api/handlers"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	server *http.Server
	logger *pterm.Logger
	port   int
}

// Config holds server configuration
type Config struct {
	Host       string
	Port       int
	Production bool

	// BaseContext, when set, is the parent of every request context so open
	// streams end when it is cancelled
	BaseContext context.Context
}

// Handlers groups the route handlers the server mounts
type Handlers struct {
	Dashboard *handlers.DashboardHandler
	Realtime  *handlers.RealtimeHandler
	History   *handlers.HistoryHandler
	Reflector *handlers.ReflectorHandler
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config, h Handlers, logger *pterm.Logger) *Server {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := NewRouter(h, !cfg.Production)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   0, // SSE streams stay open
		MaxHeaderBytes: 1 << 20,
	}
	if cfg.BaseContext != nil {
		server.BaseContext = func(net.Listener) context.Context { return cfg.BaseContext }
	}

	return &Server{
		router: router,
		server: server,
		logger: logger,
		port:   cfg.Port,
	}
}

// NewRouter builds the gin engine with all routes mounted
func NewRouter(h Handlers, requestLogging bool) *gin.Engine {
	router := gin.New()

	if requestLogging {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "NXDN Reflector Dashboard API",
			"api":     "/api/v1",
			"health":  "/health",
		})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/dashboard", h.Dashboard.GetDashboard)
		api.GET("/tx", h.Dashboard.GetTx)
		api.GET("/heard", h.Dashboard.GetHeard)
		api.GET("/repeaters", h.Dashboard.GetRepeaters)
		api.GET("/stream", h.Realtime.StreamDashboard)
		api.GET("/history", h.History.GetHistory)
		api.GET("/reflector", h.Reflector.GetReflector)
	}

	return router
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.logger.Info("Starting web server", s.logger.Args("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.WithCaller().Error("Web server failed", s.logger.Args("error", err))
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down web server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
