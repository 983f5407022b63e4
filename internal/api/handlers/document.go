package handlers

import (
	"html"

	"nxdndash/internal/display"
	"nxdndash/internal/reflector"
)

// SnapshotProvider derives the current reflector state
type SnapshotProvider interface {
	Snapshot() *reflector.Snapshot
}

// CountryResolver maps a repeater endpoint key to an ISO country code
type CountryResolver interface {
	CountryForEndpoint(endpoint string) string
}

// DashboardDocument is the full dashboard payload
type DashboardDocument struct {
	Success       bool           `json:"success"`
	Timestamp     int64          `json:"timestamp"`
	TxStatus      *TxStatus      `json:"tx_status"`
	LastHeard     []HeardItem    `json:"last_heard"`
	Repeaters     []RepeaterItem `json:"repeaters"`
	RepeaterCount int            `json:"repeater_count"`
}

// TxStatus describes the transmission in progress
type TxStatus struct {
	IsTransmitting  bool   `json:"is_transmitting"`
	Timestamp       string `json:"timestamp"`
	Source          string `json:"source"`
	Target          string `json:"target"`
	Repeater        string `json:"repeater"`
	Duration        int    `json:"duration"`
	SourceDisplay   string `json:"source_display"`
	RepeaterDisplay string `json:"repeater_display"`
	QRZLink         string `json:"qrz_link,omitempty"`
}

// HeardItem is one row of the last heard table
type HeardItem struct {
	Time            string             `json:"time"`
	Callsign        string             `json:"callsign"`
	Target          string             `json:"target"`
	Repeater        string             `json:"repeater"`
	Duration        reflector.Duration `json:"duration"`
	CallsignDisplay string             `json:"callsign_display"`
	RepeaterDisplay string             `json:"repeater_display"`
	QRZLink         string             `json:"qrz_link,omitempty"`
}

// RepeaterItem is one linked repeater
type RepeaterItem struct {
	Timestamp       string `json:"timestamp"`
	Callsign        string `json:"callsign"`
	CallsignDisplay string `json:"callsign_display"`
	Country         string `json:"country,omitempty"`
}

// DocumentBuilder renders snapshots into dashboard documents
type DocumentBuilder struct {
	source    SnapshotProvider
	formatter *display.Formatter
	countries CountryResolver
}

// NewDocumentBuilder creates a builder; countries may be nil
func NewDocumentBuilder(source SnapshotProvider, formatter *display.Formatter, countries CountryResolver) *DocumentBuilder {
	return &DocumentBuilder{
		source:    source,
		formatter: formatter,
		countries: countries,
	}
}

// Snapshot derives a fresh snapshot
func (b *DocumentBuilder) Snapshot() *reflector.Snapshot {
	return b.source.Snapshot()
}

// Build derives a snapshot and renders the full document
func (b *DocumentBuilder) Build() *DashboardDocument {
	return b.Render(b.source.Snapshot(), reflector.HeardLimit)
}

// Render turns one snapshot into a document with at most heardLimit heard rows
func (b *DocumentBuilder) Render(snapshot *reflector.Snapshot, heardLimit int) *DashboardDocument {
	return &DashboardDocument{
		Success:       true,
		Timestamp:     snapshot.GeneratedAt.Unix(),
		TxStatus:      b.TxStatus(snapshot.Active),
		LastHeard:     b.LastHeard(snapshot.RecentHeard(heardLimit)),
		Repeaters:     b.Repeaters(snapshot.Repeaters),
		RepeaterCount: snapshot.RepeaterCount(),
	}
}

// TxStatus renders the active transmission, nil when nobody is on air
func (b *DocumentBuilder) TxStatus(active *reflector.ActiveTransmission) *TxStatus {
	if active == nil {
		return nil
	}
	f := b.formatter
	status := &TxStatus{
		IsTransmitting:  true,
		Timestamp:       f.Time(active.Start),
		Source:          active.Source,
		Target:          html.EscapeString(active.Target),
		Repeater:        active.Gateway,
		Duration:        active.Duration,
		SourceDisplay:   html.EscapeString(f.Identifier(active.Source)),
		RepeaterDisplay: html.EscapeString(f.Identifier(active.Gateway)),
	}
	if link := f.QRZLink(active.Source); link != "" {
		status.QRZLink = html.EscapeString(link)
	}
	return status
}

// LastHeard renders heard entries in order
func (b *DocumentBuilder) LastHeard(entries []reflector.HeardEntry) []HeardItem {
	f := b.formatter
	items := make([]HeardItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, HeardItem{
			Time:            f.Time(entry.Timestamp),
			Callsign:        entry.Callsign,
			Target:          html.EscapeString(entry.Target),
			Repeater:        entry.Gateway,
			Duration:        entry.Duration,
			CallsignDisplay: f.HeardCallsign(entry.Callsign),
			RepeaterDisplay: f.Identifier(entry.Gateway),
			QRZLink:         f.QRZLink(entry.Callsign),
		})
	}
	return items
}

// Repeaters renders linked repeaters, adding a country when GeoIP is on
func (b *DocumentBuilder) Repeaters(links []reflector.RepeaterLink) []RepeaterItem {
	items := make([]RepeaterItem, 0, len(links))
	for _, link := range links {
		item := RepeaterItem{
			Timestamp:       b.formatter.Time(link.Timestamp),
			Callsign:        link.Callsign,
			CallsignDisplay: b.formatter.Identifier(link.Callsign),
		}
		if b.countries != nil {
			item.Country = b.countries.CountryForEndpoint(link.EndpointKey)
		}
		items = append(items, item)
	}
	return items
}
