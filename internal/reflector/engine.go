package reflector

import (
	"time"

	"nxdndash/internal/parser/nxdn"

	"github.com/pterm/pterm"
)

// LineSource supplies the marker-filtered log lines for the day containing now
type LineSource interface {
	Lines(now time.Time) []string
}

// Engine reads the reflector log and derives dashboard snapshots
type Engine struct {
	source LineSource
	parser *nxdn.Parser
	logger *pterm.Logger
	now    func() time.Time
}

// NewEngine creates a new snapshot engine
func NewEngine(source LineSource, parser *nxdn.Parser, logger *pterm.Logger) *Engine {
	return &Engine{
		source: source,
		parser: parser,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the evaluation clock, mostly for tests
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Snapshot performs one full read and classification of today's log and
// derives all three views from it
func (e *Engine) Snapshot() *Snapshot {
	now := e.now().UTC()
	started := time.Now()

	lines := e.source.Lines(now)
	events := e.parser.ClassifyAll(lines)
	snapshot := Derive(events, now)

	e.logger.Trace("Derived dashboard snapshot",
		e.logger.Args(
			"lines", len(lines),
			"heard", len(snapshot.Heard),
			"repeaters", snapshot.RepeaterCount(),
			"transmitting", snapshot.Active != nil,
			"duration_ms", time.Since(started).Milliseconds(),
		))

	return snapshot
}

// Derive runs the three projections over one classified sequence
func Derive(events []nxdn.Event, now time.Time) *Snapshot {
	transmissions := BuildTransmissions(events)
	return &Snapshot{
		GeneratedAt:   now,
		Active:        DetectActive(events, now),
		Heard:         dedupByCallsign(transmissions),
		Transmissions: transmissions,
		Repeaters:     ResolveRepeaters(events),
	}
}
