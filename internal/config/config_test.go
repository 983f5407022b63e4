package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleINI = `[General]
TG=20
Daemon=1

[Id Lookup]
Name=NXDN.csv
Time=24

[Log]
# Logging levels, 0=No logging
DisplayLevel=1
FileLevel=1
FilePath=/var/log/nxdnreflector
FileRoot=NXDNReflector

[Network]
Port=41400
Debug=0
`

func TestReflectorINI_Item(t *testing.T) {
	ini := ParseReflectorINI(sampleINI)

	tests := []struct {
		name     string
		section  string
		key      string
		expected string
	}{
		{"general tg", "General", "TG", "20"},
		{"log path", "Log", "FilePath", "/var/log/nxdnreflector"},
		{"network port", "Network", "Port", "41400"},
		{"unknown key", "General", "Missing", ""},
		{"unknown section", "Nope", "TG", ""},
		{"key from the next section", "General", "Name", ""},
		{"sanitised key", "Log", "File;Root", "NXDNReflector"},
		{"empty key after sanitising", "Log", "$$", ""},
		{"section with space is not addressable", "Id Lookup", "Name", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ini.Item(tc.section, tc.key); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestReflectorINI_LogLocation(t *testing.T) {
	ini := ParseReflectorINI(sampleINI)
	if ini.LogDir() != "/var/log/nxdnreflector" {
		t.Errorf("Unexpected log dir %q", ini.LogDir())
	}
	if ini.LogPrefix() != "NXDNReflector" {
		t.Errorf("Unexpected log prefix %q", ini.LogPrefix())
	}
}

func TestLoadReflectorINI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NXDNReflector.ini")
	if err := os.WriteFile(path, []byte(sampleINI), 0644); err != nil {
		t.Fatalf("Failed to write ini: %v", err)
	}

	ini, err := LoadReflectorINI(path)
	if err != nil {
		t.Fatalf("Failed to load ini: %v", err)
	}
	if ini.Item("General", "TG") != "20" {
		t.Errorf("Expected TG 20, got %q", ini.Item("General", "TG"))
	}
	if ini.Path() != path {
		t.Errorf("Expected path %s, got %s", path, ini.Path())
	}
}

func TestLoadReflectorINI_Missing(t *testing.T) {
	ini, err := LoadReflectorINI(filepath.Join(t.TempDir(), "missing.ini"))
	if err == nil {
		t.Error("Expected an error for a missing file")
	}
	if ini == nil {
		t.Fatal("Expected a usable empty config")
	}
	if got := ini.Item("General", "TG"); got != "" {
		t.Errorf("Expected empty value, got %q", got)
	}

	var nilINI *ReflectorINI
	if got := nilINI.Item("General", "TG"); got != "" {
		t.Errorf("Expected empty value from nil config, got %q", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NXDN_LOG_PREFIX", "")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("STREAM_INTERVAL", "5s")
	t.Setenv("GDPR", "true")
	t.Setenv("DB_CLEANUP_INTERVAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Reflector.LogPrefix != "" {
		t.Errorf("Expected prefix left for discovery, got %q", cfg.Reflector.LogPrefix)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port on bad value, got %d", cfg.Server.Port)
	}
	if cfg.Realtime.StreamInterval != 5*time.Second {
		t.Errorf("Expected 5s stream interval, got %v", cfg.Realtime.StreamInterval)
	}
	if !cfg.Display.GDPR {
		t.Error("Expected GDPR enabled")
	}
	if cfg.Database.CleanupInterval != 6*time.Hour {
		t.Errorf("Expected 6h cleanup interval, got %v", cfg.Database.CleanupInterval)
	}
}

func TestDisplayConfig_Location(t *testing.T) {
	if loc := (DisplayConfig{Timezone: "Europe/London"}).Location(); loc.String() != "Europe/London" {
		t.Errorf("Expected Europe/London, got %s", loc)
	}
	if loc := (DisplayConfig{Timezone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Errorf("Expected UTC fallback, got %s", loc)
	}
}
