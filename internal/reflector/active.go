package reflector

import (
	"time"

	"nxdndash/internal/parser/nxdn"
)

// DetectActive reports the transmission in progress at now, or nil.
//
// The newest start record must be inside the liveness window with no end
// marker after it. Its true start is found by walking back over a run of
// start records from the same callsign, so periodic re-announcements merge
// into one transmission.
func DetectActive(events []nxdn.Event, now time.Time) *ActiveTransmission {
	now = now.UTC()

	latest := -1
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == nxdn.KindTransmissionStart {
			latest = i
			break
		}
	}
	if latest < 0 {
		return nil
	}

	current := events[latest]
	age := wholeSeconds(current.Timestamp, now)
	if age < 0 || time.Duration(age)*time.Second > LivenessWindow {
		return nil
	}

	for i := latest + 1; i < len(events); i++ {
		if events[i].Kind == nxdn.KindTransmissionEnd {
			return nil
		}
	}

	start := current.Timestamp
scan:
	for i := latest - 1; i >= 0; i-- {
		switch events[i].Kind {
		case nxdn.KindTransmissionEnd:
			break scan
		case nxdn.KindTransmissionStart:
			if events[i].Source != current.Source {
				break scan
			}
			start = events[i].Timestamp
		}
	}

	return &ActiveTransmission{
		Start:    start,
		Source:   current.Source,
		Target:   current.Target,
		Gateway:  current.Gateway,
		Duration: wholeSeconds(start, now),
	}
}
