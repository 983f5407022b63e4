// Package display turns the engine's unmasked fields into what the
// dashboard shows: slashed zeros, optional redaction and QRZ links.
package display

import (
	"strings"
	"time"
)

const (
	qrzBaseURL = "https://qrz.com/db/"

	// Placeholder is what the reflector logs for an unidentified station
	Placeholder = "??????????"

	// TimeLayout is how timestamps are rendered for the dashboard
	TimeLayout = "2006-01-02 15:04:05"
)

// Options are the presentation flags for one dashboard
type Options struct {
	Redact   bool // Show only the first three characters
	QRZLinks bool
	Location *time.Location
}

// Formatter renders identifiers and timestamps per Options
type Formatter struct {
	opts Options
}

// NewFormatter creates a formatter; a nil location means UTC
func NewFormatter(opts Options) *Formatter {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Formatter{opts: opts}
}

// Identifier renders a callsign or gateway for display
func (f *Formatter) Identifier(id string) string {
	if f.opts.Redact {
		return SlashZero(Redact(id))
	}
	return SlashZero(id)
}

// HeardCallsign renders a heard-list callsign. A station that gets a QRZ
// link is shown in full even in redaction mode.
func (f *Formatter) HeardCallsign(callsign string) string {
	if f.QRZLink(callsign) != "" {
		return SlashZero(callsign)
	}
	return f.Identifier(callsign)
}

// QRZLink returns the lookup URL for a callsign, or "" when links are off
// or the callsign cannot be looked up
func (f *Formatter) QRZLink(callsign string) string {
	if !f.opts.QRZLinks || !Linkable(callsign) {
		return ""
	}
	return qrzBaseURL + callsign
}

// Time renders a log timestamp in the display time zone
func (f *Formatter) Time(t time.Time) string {
	return t.In(f.opts.Location).Format(TimeLayout)
}

// SlashZero renders the digit zero as Ø
func SlashZero(s string) string {
	return strings.ReplaceAll(s, "0", "Ø")
}

// Redact keeps the first three characters and appends ***
func Redact(s string) string {
	if len(s) > 3 {
		s = s[:3]
	}
	return s + "***"
}

// Linkable reports whether an identifier can be looked up externally:
// not the placeholder and not purely numeric
func Linkable(id string) bool {
	if id == "" || id == Placeholder {
		return false
	}
	return !isNumeric(id)
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	digits, dot := 0, false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
