package reflector

import (
	"time"

	"nxdndash/internal/parser/nxdn"
)

// BuildHeardList derives the newest-first heard list, one entry per callsign
func BuildHeardList(events []nxdn.Event) []HeardEntry {
	return dedupByCallsign(BuildTransmissions(events))
}

// BuildTransmissions lists every transmission start, newest first.
//
// A start's duration comes from the nearest later end marker seen while
// walking backwards, which is not necessarily the end of that station's own
// session. Interleaved traffic without an end between transmissions can
// attribute one session's end to another.
func BuildTransmissions(events []nxdn.Event) []HeardEntry {
	var (
		heard      []HeardEntry
		nextEnd    time.Time
		hasNextEnd bool
	)

	for i := len(events) - 1; i >= 0; i-- {
		event := &events[i]
		switch event.Kind {
		case nxdn.KindTransmissionEnd:
			nextEnd = event.Timestamp
			hasNextEnd = true
		case nxdn.KindTransmissionStart:
			duration := Transmitting()
			if hasNextEnd {
				duration = Seconds(wholeSeconds(event.Timestamp, nextEnd))
			}
			heard = append(heard, HeardEntry{
				Timestamp: event.Timestamp,
				Callsign:  event.Source,
				Target:    event.Target,
				Gateway:   event.Gateway,
				Duration:  duration,
			})
		}
	}

	return heard
}

func dedupByCallsign(entries []HeardEntry) []HeardEntry {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]HeardEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.Callsign]; ok {
			continue
		}
		seen[entry.Callsign] = struct{}{}
		unique = append(unique, entry)
	}
	return unique
}
