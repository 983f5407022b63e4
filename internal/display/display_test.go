package display

import (
	"testing"
	"time"
)

func TestSlashZero(t *testing.T) {
	if got := SlashZero("M0VUB"); got != "MØVUB" {
		t.Errorf("Expected MØVUB, got %s", got)
	}
}

func TestRedact(t *testing.T) {
	tests := map[string]string{
		"M0VUB": "M0V***",
		"G4":    "G4***",
		"":      "***",
	}
	for in, expected := range tests {
		if got := Redact(in); got != expected {
			t.Errorf("Redact(%q): expected %q, got %q", in, expected, got)
		}
	}
}

func TestLinkable(t *testing.T) {
	tests := []struct {
		id       string
		expected bool
	}{
		{"M0VUB", true},
		{Placeholder, false},
		{"12345", false},
		{"1.5", false},
		{"-7", false},
		{"", false},
		{"2E0ABC", true},
	}
	for _, tc := range tests {
		if got := Linkable(tc.id); got != tc.expected {
			t.Errorf("Linkable(%q): expected %v, got %v", tc.id, tc.expected, got)
		}
	}
}

func TestFormatter_Identifier(t *testing.T) {
	plain := NewFormatter(Options{})
	if got := plain.Identifier("M0VUB"); got != "MØVUB" {
		t.Errorf("Expected MØVUB, got %s", got)
	}

	redacted := NewFormatter(Options{Redact: true})
	if got := redacted.Identifier("M0VUB"); got != "MØV***" {
		t.Errorf("Expected MØV***, got %s", got)
	}
}

func TestFormatter_HeardCallsign(t *testing.T) {
	both := NewFormatter(Options{Redact: true, QRZLinks: true})
	if got := both.HeardCallsign("M0VUB"); got != "MØVUB" {
		t.Errorf("Expected linked callsign in full, got %s", got)
	}
	if got := both.HeardCallsign("12345"); got != "123***" {
		t.Errorf("Expected numeric id redacted, got %s", got)
	}
}

func TestFormatter_QRZLink(t *testing.T) {
	off := NewFormatter(Options{})
	if got := off.QRZLink("M0VUB"); got != "" {
		t.Errorf("Expected no link when disabled, got %s", got)
	}

	on := NewFormatter(Options{QRZLinks: true})
	if got := on.QRZLink("M0VUB"); got != "https://qrz.com/db/M0VUB" {
		t.Errorf("Unexpected link %s", got)
	}
	if got := on.QRZLink(Placeholder); got != "" {
		t.Errorf("Expected no link for placeholder, got %s", got)
	}
	if got := on.QRZLink("4400"); got != "" {
		t.Errorf("Expected no link for numeric id, got %s", got)
	}
}

func TestFormatter_Time(t *testing.T) {
	ts := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	utc := NewFormatter(Options{})
	if got := utc.Time(ts); got != "2025-07-01 10:00:00" {
		t.Errorf("Expected UTC rendering, got %s", got)
	}

	plusTwo := NewFormatter(Options{Location: time.FixedZone("CEST", 2*3600)})
	if got := plusTwo.Time(ts); got != "2025-07-01 12:00:00" {
		t.Errorf("Expected shifted rendering, got %s", got)
	}
}
