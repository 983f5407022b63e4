package reflector

import (
	"nxdndash/internal/parser/nxdn"
)

// ResolveRepeaters returns the repeaters listed in the newest status block.
// A restart or an explicit "no repeaters" line newer than any block means
// nothing is linked.
func ResolveRepeaters(events []nxdn.Event) []RepeaterLink {
	for i := len(events) - 1; i >= 0; i-- {
		switch events[i].Kind {
		case nxdn.KindReflectorRestart, nxdn.KindNoRepeaters:
			return []RepeaterLink{}
		case nxdn.KindRepeaterBlockHeader:
			return readBlock(events[i+1:])
		}
	}
	return []RepeaterLink{}
}

// readBlock collects the contiguous rows following a header, keeping the
// first row seen for each endpoint key.
func readBlock(events []nxdn.Event) []RepeaterLink {
	links := []RepeaterLink{}
	seen := make(map[string]struct{})
	for _, event := range events {
		if event.Kind != nxdn.KindRepeaterRow {
			break
		}
		if _, ok := seen[event.EndpointKey]; ok {
			continue
		}
		seen[event.EndpointKey] = struct{}{}
		links = append(links, RepeaterLink{
			Timestamp:   event.Timestamp,
			Callsign:    event.Callsign,
			EndpointKey: event.EndpointKey,
		})
	}
	return links
}
