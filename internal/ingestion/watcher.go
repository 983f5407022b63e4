package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

// defaultDebounce coalesces bursts of writes into one notification
const defaultDebounce = 250 * time.Millisecond

// Watcher notifies when the reflector writes to one of its daily logs
type Watcher struct {
	dir      string
	prefix   string
	debounce time.Duration
	onChange func()
	logger   *pterm.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher over dir calling onChange after writes to
// files named <prefix>-*.log
func NewWatcher(dir, prefix string, onChange func(), logger *pterm.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		prefix:   prefix,
		debounce: defaultDebounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Start begins watching the log directory. The directory, not the file, is
// watched so the next day's file is picked up when the reflector creates it.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.watcher = fsw
	w.cancel = cancel

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("Watching reflector log directory",
		w.logger.Args("dir", w.dir, "prefix", w.prefix))
	return nil
}

// Stop stops watching and waits for the event loop to exit
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	if err := w.watcher.Close(); err != nil {
		w.logger.Debug("Error closing file watcher", w.logger.Args("error", err))
	}
	w.cancel = nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Trace("Reflector log changed",
				w.logger.Args("file", event.Name, "op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", w.logger.Args("error", err))

		case <-timer.C:
			w.onChange()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Base(event.Name)
	return strings.HasPrefix(name, w.prefix+"-") && strings.HasSuffix(name, ".log")
}
