package enrichment

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/pterm/pterm"
)

// countryLookup is the part of the MaxMind reader the enricher needs
type countryLookup interface {
	Country(ip net.IP) (*geoip2.Country, error)
	Close() error
}

// GeoIPEnricher resolves repeater addresses to ISO country codes
type GeoIPEnricher struct {
	db     countryLookup
	logger *pterm.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewGeoIPEnricher opens the MaxMind country database at path
func NewGeoIPEnricher(path string, logger *pterm.Logger) (*GeoIPEnricher, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database %s: %w", path, err)
	}
	logger.Debug("GeoIP country database opened", logger.Args("path", path))
	return newGeoIPEnricher(db, logger), nil
}

func newGeoIPEnricher(db countryLookup, logger *pterm.Logger) *GeoIPEnricher {
	return &GeoIPEnricher{
		db:     db,
		logger: logger,
		cache:  make(map[string]string),
	}
}

// IsEnabled reports whether lookups can be made
func (g *GeoIPEnricher) IsEnabled() bool {
	return g != nil && g.db != nil
}

// CountryForEndpoint returns the ISO code for the address inside a repeater
// endpoint key such as "GB7XX     : 1.2.3.4:41400 2/60", or ""
func (g *GeoIPEnricher) CountryForEndpoint(endpoint string) string {
	if !g.IsEnabled() {
		return ""
	}
	ip := EndpointIP(endpoint)
	if ip == nil {
		return ""
	}
	return g.Country(ip)
}

// Country returns the ISO code for ip, caching results
func (g *GeoIPEnricher) Country(ip net.IP) string {
	if !g.IsEnabled() {
		return ""
	}
	key := ip.String()

	g.mu.RLock()
	code, ok := g.cache[key]
	g.mu.RUnlock()
	if ok {
		return code
	}

	record, err := g.db.Country(ip)
	if err != nil {
		g.logger.Debug("GeoIP lookup failed", g.logger.Args("ip", key, "error", err))
		return ""
	}
	code = record.Country.IsoCode

	g.mu.Lock()
	g.cache[key] = code
	g.mu.Unlock()

	return code
}

// GetCacheSize returns the number of cached lookups
func (g *GeoIPEnricher) GetCacheSize() int {
	if g == nil {
		return 0
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cache)
}

// Close releases the database
func (g *GeoIPEnricher) Close() {
	if !g.IsEnabled() {
		return
	}
	if err := g.db.Close(); err != nil {
		g.logger.Warn("Failed to close GeoIP database", g.logger.Args("error", err))
	}
}

// EndpointIP extracts the first host:port address from an endpoint key
func EndpointIP(endpoint string) net.IP {
	for _, field := range strings.Fields(endpoint) {
		host, _, err := net.SplitHostPort(strings.TrimPrefix(field, ":"))
		if err != nil {
			continue
		}
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}
