package realtime

import (
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// Feed fans out "the log changed" signals to connected stream clients.
// Each subscriber gets a channel with a buffer of one, so a slow client
// sees at most one pending signal and never blocks the notifier.
type Feed struct {
	logger *pterm.Logger

	mu          sync.RWMutex
	subscribers map[uint64]chan struct{}
	nextID      uint64
	notified    int64
	lastNotify  time.Time
}

// FeedStats describes feed activity
type FeedStats struct {
	Subscribers   int       `json:"subscribers"`
	Notifications int64     `json:"notifications"`
	LastNotify    time.Time `json:"last_notify"`
}

// NewFeed creates a new change feed
func NewFeed(logger *pterm.Logger) *Feed {
	return &Feed{
		logger:      logger,
		subscribers: make(map[uint64]chan struct{}),
	}
}

// Subscribe registers a new client and returns its id and signal channel
func (f *Feed) Subscribe() (uint64, <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	ch := make(chan struct{}, 1)
	f.subscribers[id] = ch

	f.logger.Trace("Stream client subscribed", f.logger.Args("id", id, "subscribers", len(f.subscribers)))
	return id, ch
}

// Unsubscribe removes a client and closes its channel
func (f *Feed) Unsubscribe(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, ok := f.subscribers[id]
	if !ok {
		return
	}
	delete(f.subscribers, id)
	close(ch)

	f.logger.Trace("Stream client unsubscribed", f.logger.Args("id", id, "subscribers", len(f.subscribers)))
}

// Notify signals every subscriber without blocking
func (f *Feed) Notify() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notified++
	f.lastNotify = time.Now()
	for _, ch := range f.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount returns the number of connected clients
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// GetStats returns feed statistics
func (f *Feed) GetStats() FeedStats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return FeedStats{
		Subscribers:   len(f.subscribers),
		Notifications: f.notified,
		LastNotify:    f.lastNotify,
	}
}
