package ingestion

import (
	"context"
	"sync"
	"time"

	"nxdndash/internal/database/models"
	"nxdndash/internal/database/repositories"
	"nxdndash/internal/reflector"

	"github.com/pterm/pterm"
)

// SnapshotSource derives the current dashboard state
type SnapshotSource interface {
	Snapshot() *reflector.Snapshot
}

// Archiver copies finished transmissions from today's log into the archive
// database. The log is re-read on every sweep; the repository drops
// transmissions it already holds.
type Archiver struct {
	source   SnapshotSource
	repo     repositories.HeardRepository
	logger   *pterm.Logger
	interval time.Duration
	trigger  chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Statistics
	statsMu       sync.Mutex
	totalArchived int64
	totalErrors   int64
	lastSweep     time.Time
}

// ArchiverStats is a point-in-time view of archiver activity
type ArchiverStats struct {
	TotalArchived int64     `json:"total_archived"`
	TotalErrors   int64     `json:"total_errors"`
	LastSweep     time.Time `json:"last_sweep"`
}

// NewArchiver creates a new archiver sweeping every interval
func NewArchiver(source SnapshotSource, repo repositories.HeardRepository, logger *pterm.Logger, interval time.Duration) *Archiver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Archiver{
		source:   source,
		repo:     repo,
		logger:   logger,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Start begins the sweep loop
func (a *Archiver) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}

	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	go a.loop(ctx)

	a.logger.Info("Started heard archiver", a.logger.Args("interval", a.interval))
}

// Stop runs no further sweeps and waits for the loop to exit
func (a *Archiver) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	a.wg.Wait()
	a.logger.Info("Stopped heard archiver")
}

// Trigger requests a sweep without waiting for the next tick
func (a *Archiver) Trigger() {
	select {
	case a.trigger <- struct{}{}:
	default:
	}
}

func (a *Archiver) loop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.Sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Sweep()
		case <-a.trigger:
			a.Sweep()
		}
	}
}

// Sweep archives every finished transmission in the current snapshot and
// returns how many were new
func (a *Archiver) Sweep() int64 {
	snapshot := a.source.Snapshot()
	records := FinishedRecords(snapshot.Transmissions)

	inserted, err := a.repo.CreateBatch(records)

	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	a.lastSweep = time.Now()
	if err != nil {
		a.totalErrors++
		a.logger.WithCaller().Error("Failed to archive transmissions",
			a.logger.Args("count", len(records), "error", err))
		return 0
	}
	a.totalArchived += inserted

	if inserted > 0 {
		a.logger.Debug("Archived transmissions",
			a.logger.Args("new", inserted, "seen", len(records), "total_archived", a.totalArchived))
	}
	return inserted
}

// GetStats returns archiver statistics
func (a *Archiver) GetStats() ArchiverStats {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	return ArchiverStats{
		TotalArchived: a.totalArchived,
		TotalErrors:   a.totalErrors,
		LastSweep:     a.lastSweep,
	}
}

// FinishedRecords converts transmissions with a known duration to database
// rows, skipping ones still on air
func FinishedRecords(transmissions []reflector.HeardEntry) []*models.HeardRecord {
	records := make([]*models.HeardRecord, 0, len(transmissions))
	for _, entry := range transmissions {
		if entry.Duration.Transmitting {
			continue
		}
		records = append(records, &models.HeardRecord{
			Timestamp:       entry.Timestamp.UTC(),
			Callsign:        entry.Callsign,
			Target:          entry.Target,
			Gateway:         entry.Gateway,
			DurationSeconds: entry.Duration.Seconds,
			RecordHash:      models.HashHeardRecord(entry.Timestamp, entry.Callsign),
		})
	}
	return records
}
