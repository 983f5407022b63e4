package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"nxdndash/internal/api"
	"nxdndash/internal/api/handlers"
	"nxdndash/internal/banner"
	"nxdndash/internal/config"
	"nxdndash/internal/database"
	"nxdndash/internal/database/repositories"
	"nxdndash/internal/discovery"
	"nxdndash/internal/display"
	"nxdndash/internal/enrichment"
	"nxdndash/internal/ingestion"
	"nxdndash/internal/parser/nxdn"
	"nxdndash/internal/realtime"
	"nxdndash/internal/reflector"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

func main() {
	// INFO until LOG_LEVEL has been read
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)

	banner.Print()

	logger.Info("Initializing NXDN reflector dashboard...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithCaller().Fatal("Failed to load configuration", logger.Args("error", err))
	}

	logger = pterm.DefaultLogger.WithLevel(parseLogLevel(cfg.LogLevel))
	logger.Debug("Log level set", logger.Args("level", cfg.LogLevel))

	logger.Debug("Configuration loaded",
		logger.Args(
			"ini_path", cfg.Reflector.INIPath,
			"timezone", cfg.Display.Timezone,
			"gdpr", cfg.Display.GDPR,
			"server_port", cfg.Server.Port,
			"archive_enabled", cfg.Archive.Enabled,
			"geoip_enabled", cfg.GeoIP.Enabled,
		))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing INI only costs the derived defaults
	ini, err := config.LoadReflectorINI(cfg.Reflector.INIPath)
	if err != nil {
		logger.Warn("Reflector INI not readable, using defaults", logger.Args("error", err))
	}

	detector := discovery.NewReflectorDetector(cfg.Reflector, ini, logger)
	logger.Debug("Running log discovery", logger.Args("detector", detector.Name()))
	location := detector.Detect()
	if !location.Valid {
		logger.Warn("No reflector log found yet, the dashboard stays empty until one appears",
			logger.Args("dir", location.Dir, "prefix", location.Prefix, "source", location.Source))
	}

	reader := ingestion.NewLineReader(location.Dir, location.Prefix, logger)
	parser := nxdn.NewParser(logger)
	engine := reflector.NewEngine(reader, parser, logger)
	logger.Debug("Snapshot engine ready", logger.Args("parser", parser.Name(), "log_file", reader.PathFor(time.Now())))

	var (
		db        *gorm.DB
		heardRepo repositories.HeardRepository
		archiver  *ingestion.Archiver
		cleanup   *database.CleanupService
	)
	if cfg.Archive.Enabled {
		db, err = database.NewConnection(&database.Config{
			Path:         cfg.Database.Path,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			ConnMaxLife:  cfg.Database.ConnMaxLife,
		}, logger)
		if err != nil {
			logger.WithCaller().Error("Archive database unavailable, continuing without history", logger.Args("error", err))
		} else {
			heardRepo = repositories.NewHeardRepository(db, logger)
			archiver = ingestion.NewArchiver(engine, heardRepo, logger, cfg.Archive.Interval)

			cleanup = database.NewCleanupService(db, heardRepo, logger,
				cfg.Database.RetentionDays, cfg.Database.CleanupInterval, cfg.Database.VacuumEnabled)
			cleanup.Start(ctx)
		}
	} else {
		logger.Info("Heard history archive disabled by configuration")
	}

	var (
		geoIP     *enrichment.GeoIPEnricher
		countries handlers.CountryResolver
	)
	if cfg.GeoIP.Enabled {
		geoIP, err = enrichment.NewGeoIPEnricher(cfg.GeoIP.CountryDBPath, logger)
		if err != nil {
			logger.Warn("GeoIP enricher initialization failed, continuing without GeoIP", logger.Args("error", err))
		} else {
			countries = geoIP
			logger.Info("GeoIP enrichment enabled successfully")
		}
	}

	feed := realtime.NewFeed(logger)
	coordinator := ingestion.NewCoordinator(reader, archiver, cfg.Realtime.WatchEnabled, logger)
	coordinator.OnChange(feed.Notify)
	if err := coordinator.Start(ctx); err != nil {
		logger.WithCaller().Fatal("Failed to start ingestion coordinator", logger.Args("error", err))
	}

	formatter := display.NewFormatter(display.Options{
		Redact:   cfg.Display.GDPR,
		QRZLinks: cfg.Display.ShowQRZ,
		Location: cfg.Display.Location(),
	})
	builder := handlers.NewDocumentBuilder(engine, formatter, countries)

	reflectorHandler := handlers.NewReflectorHandler(ini, location, coordinator, logger).
		WithStats("feed", func() interface{} { return feed.GetStats() })
	if cleanup != nil {
		reflectorHandler.WithStats("cleanup", func() interface{} { return cleanup.GetStats() })
	}
	if geoIP.IsEnabled() {
		reflectorHandler.WithStats("geoip_cache_size", func() interface{} { return geoIP.GetCacheSize() })
	}

	webServer := api.NewServer(&api.Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		Production: cfg.Server.Production,

		BaseContext: ctx,
	}, api.Handlers{
		Dashboard: handlers.NewDashboardHandler(builder, logger),
		Realtime:  handlers.NewRealtimeHandler(builder, feed, cfg.Realtime.StreamInterval, logger),
		History:   handlers.NewHistoryHandler(heardRepo, formatter, logger),
		Reflector: reflectorHandler,
	}, logger)

	go func() {
		if err := webServer.Run(); err != nil {
			logger.WithCaller().Error("Web server error", logger.Args("error", err))
			stop()
		}
	}()

	logger.Info("NXDN dashboard is running",
		logger.Args(
			"url", pterm.Sprintf("http://localhost:%d", cfg.Server.Port),
			"log_file", reader.PathFor(time.Now()),
		))

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping services...")

	coordinator.Stop()
	if cleanup != nil {
		cleanup.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.WithCaller().Error("Web server shutdown error", logger.Args("error", err))
	} else {
		logger.Info("Web server stopped successfully")
	}

	geoIP.Close()
	if db != nil {
		if err := database.Close(db); err != nil {
			logger.Warn("Failed to close database", logger.Args("error", err))
		}
	}

	logger.Info("NXDN dashboard stopped gracefully")
}

// parseLogLevel maps LOG_LEVEL (trace, debug, info, warn, error, fatal) to
// a pterm level, defaulting to info
func parseLogLevel(level string) pterm.LogLevel {
	switch strings.ToLower(level) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "fatal":
		return pterm.LogLevelFatal
	default:
		return pterm.LogLevelInfo
	}
}
