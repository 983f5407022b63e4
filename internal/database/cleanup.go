package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nxdndash/internal/database/repositories"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

const cleanupBatchSize = 1000

// CleanupService deletes archived transmissions past the retention window
type CleanupService struct {
	db              *gorm.DB
	repo            repositories.HeardRepository
	logger          *pterm.Logger
	retentionDays   int
	cleanupInterval time.Duration
	vacuumEnabled   bool
	now             func() time.Time

	mu              sync.Mutex
	cancel          context.CancelFunc
	done            chan struct{}
	lastRunTime     time.Time
	recordsDeleted  int64
	cleanupDuration time.Duration
}

// CleanupStats holds statistics about cleanup operations
type CleanupStats struct {
	LastRunTime     time.Time     `json:"last_run_time"`
	RecordsDeleted  int64         `json:"records_deleted"`
	CleanupDuration time.Duration `json:"cleanup_duration_ns"`
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db *gorm.DB, repo repositories.HeardRepository, logger *pterm.Logger, retentionDays int, cleanupInterval time.Duration, vacuumEnabled bool) *CleanupService {
	return &CleanupService{
		db:              db,
		repo:            repo,
		logger:          logger,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		vacuumEnabled:   vacuumEnabled,
		now:             time.Now,
	}
}

// Start begins the periodic cleanup loop
func (s *CleanupService) Start(ctx context.Context) {
	if s.retentionDays <= 0 {
		s.logger.Info("Data retention disabled (DB_RETENTION_DAYS=0), cleanup service not started")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.logger.Info("Starting database cleanup service",
		s.logger.Args(
			"retention_days", s.retentionDays,
			"interval", s.cleanupInterval,
			"vacuum_enabled", s.vacuumEnabled,
		))

	go s.cleanupLoop(ctx, s.done)
}

// Stop stops the cleanup loop and waits for it to exit
func (s *CleanupService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	s.logger.Info("Stopping database cleanup service")
	cancel()
	<-done
}

func (s *CleanupService) cleanupLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	s.RunCleanup()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunCleanup()
		}
	}
}

// RunCleanup deletes everything older than the retention window
func (s *CleanupService) RunCleanup() (int64, error) {
	if s.retentionDays <= 0 {
		return 0, fmt.Errorf("retention disabled (DB_RETENTION_DAYS=0)")
	}

	startTime := time.Now()
	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.repo.DeleteOlderThan(cutoff, cleanupBatchSize)
	if err != nil {
		s.logger.WithCaller().Error("Failed to delete old records",
			s.logger.Args("error", err, "cutoff_date", cutoff.Format("2006-01-02")))
		return deleted, fmt.Errorf("failed to delete records before %s: %w", cutoff.Format("2006-01-02"), err)
	}

	s.mu.Lock()
	s.lastRunTime = startTime
	s.recordsDeleted = deleted
	s.cleanupDuration = time.Since(startTime)
	s.mu.Unlock()

	if deleted > 0 {
		s.logger.Info("Cleanup completed",
			s.logger.Args(
				"records_deleted", deleted,
				"duration", time.Since(startTime).Round(time.Millisecond),
				"cutoff_date", cutoff.Format("2006-01-02"),
			))
		if s.vacuumEnabled {
			s.runVacuum()
		}
	} else {
		s.logger.Debug("Cleanup found nothing to delete", s.logger.Args("cutoff_date", cutoff.Format("2006-01-02")))
	}

	return deleted, nil
}

func (s *CleanupService) runVacuum() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	started := time.Now()
	if err := s.db.WithContext(ctx).Exec("VACUUM").Error; err != nil {
		s.logger.WithCaller().Error("Failed to run VACUUM", s.logger.Args("error", err))
		return
	}
	s.logger.Debug("VACUUM completed", s.logger.Args("duration", time.Since(started).Round(time.Millisecond)))
}

// GetStats returns cleanup statistics
func (s *CleanupService) GetStats() *CleanupStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &CleanupStats{
		LastRunTime:     s.lastRunTime,
		RecordsDeleted:  s.recordsDeleted,
		CleanupDuration: s.cleanupDuration,
	}
}
