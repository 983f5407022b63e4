package nxdn

import (
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// Parser classifies NXDNReflector log lines into events
type Parser struct {
	logger *pterm.Logger
}

// NewParser creates a new NXDNReflector log parser
func NewParser(logger *pterm.Logger) *Parser {
	return &Parser{logger: logger}
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "nxdn"
}

// CanParse checks if the line carries the record marker and a valid timestamp
func (p *Parser) CanParse(line string) bool {
	if !strings.HasPrefix(line, RecordMarker) {
		return false
	}
	_, ok := parseTimestamp(line)
	return ok
}

// ClassifyAll classifies every line in order. The result has one event per
// input line, so indexes line up with the source slice.
func (p *Parser) ClassifyAll(lines []string) []Event {
	events := make([]Event, len(lines))
	unknown := 0
	for i, line := range lines {
		events[i] = p.Classify(line)
		if events[i].Kind == KindUnknown {
			unknown++
		}
	}

	p.logger.Trace("Classified reflector log",
		p.logger.Args("lines", len(lines), "unknown", unknown))

	return events
}

// Classify turns one raw line into an event. It never fails: anything that
// does not fit the format comes back as KindUnknown.
func (p *Parser) Classify(line string) Event {
	line = strings.TrimRight(line, "\r\n")
	event := Event{Kind: KindUnknown, Raw: line}

	if !strings.HasPrefix(line, RecordMarker) {
		return event
	}

	ts, ok := parseTimestamp(line)
	if !ok {
		p.logger.Trace("Unparseable timestamp, ignoring line",
			p.logger.Args("line_preview", preview(line)))
		return event
	}
	event.Timestamp = ts

	switch {
	case isNoise(line):
		event.Kind = KindNoise

	case strings.Contains(line, MarkerTransmissionFrom):
		source, gateway, target, ok := parseTransmission(line)
		if !ok {
			// a start record with out-of-order markers or an oversized callsign
			p.logger.Trace("Rejected transmission record",
				p.logger.Args("line_preview", preview(line)))
			if isEnd(line) {
				event.Kind = KindTransmissionEnd
			}
			return event
		}
		event.Kind = KindTransmissionStart
		event.Source = source
		event.Gateway = gateway
		event.Target = target

	case isEnd(line):
		event.Kind = KindTransmissionEnd

	case strings.Contains(line, MarkerLinkedRepeaters):
		event.Kind = KindRepeaterBlockHeader

	case strings.Contains(line, MarkerNoRepeaters):
		event.Kind = KindNoRepeaters

	case strings.Contains(line, MarkerStarting):
		event.Kind = KindReflectorRestart

	case isRepeaterRow(line):
		event.Kind = KindRepeaterRow
		event.Callsign = strings.TrimSpace(field(line, RepeaterCallsignOffset, RepeaterCallsignWidth))
		event.EndpointKey = field(line, RepeaterEndpointOffset, len(line))
	}

	return event
}

func parseTimestamp(line string) (time.Time, bool) {
	end := TimestampOffset + TimestampWidth
	if len(line) < end {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(TimestampLayout, line[TimestampOffset:end], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// parseTransmission extracts callsign, gateway and target from
// "Transmission from <callsign> at <gateway> to <target>".
func parseTransmission(line string) (source, gateway, target string, ok bool) {
	fromPos := strings.Index(line, MarkerTransmissionFrom)
	atPos := strings.Index(line, MarkerAt)
	toPos := strings.Index(line, MarkerTo)

	if fromPos < 0 || atPos < 0 || toPos < 0 || atPos <= fromPos || toPos <= atPos {
		return "", "", "", false
	}

	callsignStart := fromPos + len(MarkerTransmissionFrom)
	if callsignStart > atPos {
		return "", "", "", false
	}

	source = strings.TrimSpace(line[callsignStart:atPos])
	if len(source) >= MaxCallsignLength {
		return "", "", "", false
	}

	gateway = strings.TrimSpace(line[atPos+len(MarkerAt) : toPos])
	target = strings.TrimSpace(line[toPos+len(MarkerTo):])

	return source, gateway, target, true
}

func isNoise(line string) bool {
	return strings.Contains(line, MarkerUnknownSource) ||
		strings.Contains(line, MarkerAdding) ||
		strings.Contains(line, MarkerRemoving)
}

func isEnd(line string) bool {
	return strings.Contains(line, MarkerEndOf) || strings.Contains(line, MarkerWatchdog)
}

func isRepeaterRow(line string) bool {
	if len(line) <= RepeaterIndentOffset {
		return false
	}
	return strings.HasPrefix(line[RepeaterIndentOffset:], RepeaterIndent)
}

// field returns up to width bytes starting at offset, clipped to the line.
func field(line string, offset, width int) string {
	if offset >= len(line) {
		return ""
	}
	end := offset + width
	if end > len(line) {
		end = len(line)
	}
	return line[offset:end]
}

func preview(line string) string {
	if len(line) > 150 {
		return line[:150] + "..."
	}
	return line
}
