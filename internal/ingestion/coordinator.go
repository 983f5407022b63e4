package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// Coordinator owns the background ingestion pieces: the log directory watcher
// and the optional archiver. Change notifications fan out to every listener.
type Coordinator struct {
	reader       *LineReader
	archiver     *Archiver
	watchEnabled bool
	logger       *pterm.Logger

	mu        sync.RWMutex
	watcher   *Watcher
	listeners []func()
	isRunning bool
}

// NewCoordinator creates a new ingestion coordinator
func NewCoordinator(reader *LineReader, archiver *Archiver, watchEnabled bool, logger *pterm.Logger) *Coordinator {
	c := &Coordinator{
		reader:       reader,
		archiver:     archiver,
		watchEnabled: watchEnabled,
		logger:       logger,
	}
	if archiver != nil {
		c.listeners = append(c.listeners, archiver.Trigger)
	}
	return c
}

// OnChange registers fn to run after each debounced log write
func (c *Coordinator) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Start starts the archiver and, when enabled, the directory watcher. A
// watcher failure is logged and leaves the service in polling mode.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.logger.Warn("Coordinator already running, skipping start")
		return nil
	}

	c.logger.Info("Starting ingestion coordinator...",
		c.logger.Args("dir", c.reader.Dir(), "prefix", c.reader.Prefix()))

	if c.archiver != nil {
		c.archiver.Start(ctx)
	}

	if c.watchEnabled {
		watcher := NewWatcher(c.reader.Dir(), c.reader.Prefix(), c.notify, c.logger)
		if err := watcher.Start(ctx); err != nil {
			c.logger.WithCaller().Warn("File watcher unavailable, clients fall back to polling",
				c.logger.Args("error", err))
		} else {
			c.watcher = watcher
		}
	}

	c.isRunning = true
	c.logger.Info("Ingestion coordinator started",
		c.logger.Args("watching", c.watcher != nil, "archiving", c.archiver != nil))
	return nil
}

// Stop stops the watcher and archiver
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		c.logger.Debug("Coordinator not running, skipping stop")
		return
	}
	watcher := c.watcher
	c.watcher = nil
	c.isRunning = false
	c.mu.Unlock()

	// Without the lock: the watcher loop may be inside notify
	if watcher != nil {
		watcher.Stop()
	}
	if c.archiver != nil {
		c.archiver.Stop()
	}

	c.logger.Info("Ingestion coordinator stopped successfully")
}

// GetStatus returns the current status of the coordinator
func (c *Coordinator) GetStatus() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := map[string]interface{}{
		"is_running": c.isRunning,
		"watching":   c.watcher != nil,
		"log_file":   c.reader.PathFor(time.Now()),
	}
	if c.archiver != nil {
		status["archiver"] = c.archiver.GetStats()
	}
	return status
}

// IsRunning returns whether the coordinator is currently running
func (c *Coordinator) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isRunning
}

// Restart stops and restarts the coordinator
func (c *Coordinator) Restart(ctx context.Context) error {
	c.logger.Info("Restarting ingestion coordinator...")
	c.Stop()
	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("failed to restart coordinator: %w", err)
	}
	return nil
}

func (c *Coordinator) notify() {
	c.mu.RLock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
