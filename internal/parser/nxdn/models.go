package nxdn

import (
	"time"
)

// Kind identifies which record a reflector log line carries
type Kind int

const (
	// KindUnknown is any line no rule matched, including unparseable ones
	KindUnknown Kind = iota
	// KindNoise is chatter excluded from every view
	KindNoise
	// KindTransmissionStart announces a station keying up
	KindTransmissionStart
	// KindTransmissionEnd closes a transmission (no callsign in this format)
	KindTransmissionEnd
	// KindRepeaterBlockHeader opens a linked repeaters status block
	KindRepeaterBlockHeader
	// KindNoRepeaters states that no repeater is linked
	KindNoRepeaters
	// KindReflectorRestart marks a reflector (re)start
	KindReflectorRestart
	// KindRepeaterRow is an indented row inside a status block
	KindRepeaterRow
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindNoise:               "noise",
	KindTransmissionStart:   "transmission_start",
	KindTransmissionEnd:     "transmission_end",
	KindRepeaterBlockHeader: "repeater_block_header",
	KindNoRepeaters:         "no_repeaters",
	KindReflectorRestart:    "reflector_restart",
	KindRepeaterRow:         "repeater_row",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one classified reflector log line
type Event struct {
	Kind      Kind
	Timestamp time.Time
	Raw       string

	// TransmissionStart fields
	Source  string
	Gateway string
	Target  string

	// RepeaterRow fields
	Callsign    string
	EndpointKey string
}

func (e *Event) GetTimestamp() time.Time {
	return e.Timestamp
}

// IsStart reports whether the event opens a transmission
func (e *Event) IsStart() bool {
	return e.Kind == KindTransmissionStart
}

// IsEnd reports whether the event closes a transmission
func (e *Event) IsEnd() bool {
	return e.Kind == KindTransmissionEnd
}
