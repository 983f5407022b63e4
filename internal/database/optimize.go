package database

import (
	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// OptimizeDatabase verifies SQLite settings and creates the query indexes the
// history endpoints rely on
func OptimizeDatabase(db *gorm.DB, logger *pterm.Logger) error {
	logger.Debug("Applying database optimizations...")

	var journalMode string
	if err := db.Raw("PRAGMA journal_mode").Scan(&journalMode).Error; err != nil {
		logger.Warn("Failed to check journal mode", logger.Args("error", err))
	} else if journalMode != "wal" {
		logger.Warn("Database not in WAL mode", logger.Args("mode", journalMode))
	} else {
		logger.Trace("Database journal mode verified", logger.Args("mode", journalMode))
	}

	indexes := []string{
		// Per-callsign history, newest first
		`CREATE INDEX IF NOT EXISTS idx_heard_callsign_time
		 ON heard_records(callsign, timestamp DESC)`,

		// Newest-first listing without a callsign filter
		`CREATE INDEX IF NOT EXISTS idx_heard_time_desc
		 ON heard_records(timestamp DESC, id DESC)`,
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			logger.Warn("Failed to create index", logger.Args("error", err))
			return err
		}
	}
	logger.Debug("Performance indexes verified", logger.Args("count", len(indexes)))

	if err := db.Exec("ANALYZE").Error; err != nil {
		logger.Warn("Failed to analyze database", logger.Args("error", err))
	}

	return nil
}
