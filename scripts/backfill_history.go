package main

import (
	"flag"
	"time"

	"nxdndash/internal/config"
	"nxdndash/internal/database"
	"nxdndash/internal/database/repositories"
	"nxdndash/internal/discovery"
	"nxdndash/internal/ingestion"
	"nxdndash/internal/parser/nxdn"
	"nxdndash/internal/reflector"

	"github.com/pterm/pterm"
)

// Imports finished transmissions from past daily logs into the history
// archive. Days already archived are skipped by the record hash, so the tool
// can be re-run safely.
func main() {
	days := flag.Int("days", 7, "number of past days to import, today included")
	flag.Parse()

	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", logger.Args("error", err))
	}

	ini, err := config.LoadReflectorINI(cfg.Reflector.INIPath)
	if err != nil {
		logger.Warn("Reflector INI not readable, using defaults", logger.Args("error", err))
	}
	location := discovery.NewReflectorDetector(cfg.Reflector, ini, logger).Detect()

	db, err := database.NewConnection(&database.Config{
		Path:         cfg.Database.Path,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		ConnMaxLife:  cfg.Database.ConnMaxLife,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open archive database", logger.Args("error", err))
	}
	defer database.Close(db)

	repo := repositories.NewHeardRepository(db, logger)
	reader := ingestion.NewLineReader(location.Dir, location.Prefix, logger)
	parser := nxdn.NewParser(logger)

	pterm.DefaultSection.Println("NXDN history backfill")
	pterm.Info.Printfln("Log directory: %s (%s)", location.Dir, location.Source)
	pterm.Info.Printfln("Database: %s", cfg.Database.Path)

	today := time.Now().UTC()
	var totalSeen, totalInserted int64
	for i := *days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		lines := reader.Lines(day)
		if len(lines) == 0 {
			continue
		}

		records := ingestion.FinishedRecords(reflector.BuildTransmissions(parser.ClassifyAll(lines)))
		inserted, err := repo.CreateBatch(records)
		if err != nil {
			logger.Error("Failed to archive day", logger.Args("file", reader.PathFor(day), "error", err))
			continue
		}

		totalSeen += int64(len(records))
		totalInserted += inserted
		pterm.Success.Printfln("%s: %d transmissions, %d new", ingestion.DailyFileName(location.Prefix, day), len(records), inserted)
	}

	count, _ := repo.Count()
	pterm.Info.Printfln("Done: %d transmissions read, %d new, %d archived in total", totalSeen, totalInserted, count)
}
