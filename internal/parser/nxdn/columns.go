package nxdn

// Column contract of an NXDNReflector log line.
//
//	| Field                 | Offset | Width  | Format                      |
//	|-----------------------|--------|--------|-----------------------------|
//	| Record marker         | 0      | 3      | literal "M: "               |
//	| Timestamp             | 3      | 23     | YYYY-MM-DD HH:MM:SS.mmm     |
//	| Body                  | 27     | -      | free text                   |
//	| Repeater row indent   | 27     | 3      | spaces                      |
//	| Repeater callsign     | 31     | 10     | trimmed                     |
//	| Repeater endpoint key | 31     | to end | address:port + slot info    |
//
// The example row
//
//	M: 2016-06-24 11:11:41.787     GB7XX     : 217.82.212.214:42000 2/60
//
// has its callsign at offset 31 and four spaces of indentation from 27.
const (
	RecordMarker = "M: "

	TimestampOffset = 3
	TimestampLayout = "2006-01-02 15:04:05.000"
	TimestampWidth  = len(TimestampLayout)

	BodyOffset = 27

	RepeaterIndentOffset = 27
	RepeaterIndent       = "   "

	RepeaterCallsignOffset = 31
	RepeaterCallsignWidth  = 10

	RepeaterEndpointOffset = 31
)

// Substring markers, matched case-sensitively anywhere in the line.
const (
	MarkerTransmissionFrom = "Transmission from"
	MarkerAt               = " at "
	MarkerTo               = " to "

	MarkerEndOf    = "end of"
	MarkerWatchdog = "watchdog has expired"

	MarkerUnknownSource = "Data received from an unknown source"
	MarkerAdding        = "Adding "
	MarkerRemoving      = "Removing "

	MarkerLinkedRepeaters = "Currently linked repeaters"
	MarkerNoRepeaters     = "No repeaters linked"
	MarkerStarting        = "Starting NXDNReflector"
)

// MaxCallsignLength bounds a transmission callsign; anything this long or
// longer is parse noise.
const MaxCallsignLength = 20
