package reflector

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	// HeardLimit is how many heard entries the dashboard shows
	HeardLimit = 20

	// LivenessWindow is how old the newest transmission record may be while
	// still counting as an in-progress transmission
	LivenessWindow = 180 * time.Second
)

// TransmittingLabel is the duration shown for a transmission with no end yet
const TransmittingLabel = "transmitting"

// Duration is a heard entry's length: whole seconds, or still transmitting
type Duration struct {
	Seconds      int
	Transmitting bool
}

// Transmitting returns the sentinel for an unfinished transmission
func Transmitting() Duration {
	return Duration{Transmitting: true}
}

// Seconds returns a finished duration
func Seconds(s int) Duration {
	return Duration{Seconds: s}
}

func (d Duration) String() string {
	if d.Transmitting {
		return TransmittingLabel
	}
	return strconv.Itoa(d.Seconds)
}

// MarshalJSON renders a number of seconds or the "transmitting" string
func (d Duration) MarshalJSON() ([]byte, error) {
	if d.Transmitting {
		return json.Marshal(TransmittingLabel)
	}
	return json.Marshal(d.Seconds)
}

// UnmarshalJSON accepts either form written by MarshalJSON
func (d *Duration) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		if label != TransmittingLabel {
			return fmt.Errorf("invalid duration %q", label)
		}
		*d = Transmitting()
		return nil
	}

	var seconds int
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid duration %s: %w", data, err)
	}
	*d = Seconds(seconds)
	return nil
}

// HeardEntry is one station in the recent activity list
type HeardEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Callsign  string    `json:"callsign"`
	Target    string    `json:"target"`
	Gateway   string    `json:"gateway"`
	Duration  Duration  `json:"duration"`
}

// ActiveTransmission describes a transmission in progress at evaluation time
type ActiveTransmission struct {
	Start    time.Time `json:"timestamp"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Gateway  string    `json:"gateway"`
	Duration int       `json:"duration"` // seconds since Start
}

// RepeaterLink is one linked repeater from the newest status block
type RepeaterLink struct {
	Timestamp   time.Time `json:"timestamp"`
	Callsign    string    `json:"callsign"`
	EndpointKey string    `json:"endpoint_key"`
}

// Snapshot holds the three views derived from one read of the log
type Snapshot struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Active      *ActiveTransmission `json:"active"`
	Heard       []HeardEntry        `json:"heard"`
	Repeaters   []RepeaterLink      `json:"repeaters"`

	// Transmissions holds every start of the day, newest first, before
	// per-callsign deduplication
	Transmissions []HeardEntry `json:"-"`
}

// RepeaterCount returns the number of linked repeaters
func (s *Snapshot) RepeaterCount() int {
	return len(s.Repeaters)
}

// RecentHeard returns at most limit heard entries, newest first
func (s *Snapshot) RecentHeard(limit int) []HeardEntry {
	if limit <= 0 || limit > len(s.Heard) {
		limit = len(s.Heard)
	}
	return s.Heard[:limit]
}

// wholeSeconds is the number of whole seconds from a to b, counted on
// second-resolution clocks.
func wholeSeconds(a, b time.Time) int {
	return int(b.Truncate(time.Second).Sub(a.Truncate(time.Second)) / time.Second)
}
