package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // display zones must resolve in minimal containers

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Reflector log configuration
	Reflector ReflectorConfig

	// Presentation configuration
	Display DisplayConfig

	// Log configuration
	LogLevel string

	// Server Configuration
	Server ServerConfig

	// Realtime push configuration
	Realtime RealtimeConfig

	// Heard history archive
	Archive ArchiveConfig

	// Database Configuration
	Database DatabaseConfig

	// GeoIP Configuration
	GeoIP GeoIPConfig
}

// ReflectorConfig locates the reflector's daily log and INI file
type ReflectorConfig struct {
	LogPath      string // Directory holding the daily logs (empty = derive)
	LogPrefix    string // File prefix, files are <prefix>-YYYY-MM-DD.log (empty = derive)
	INIPath      string
	AutoDiscover bool
}

// DisplayConfig holds the presentation flags handed to the display layer
type DisplayConfig struct {
	Timezone string
	GDPR     bool // Redact callsigns to their first three characters
	ShowQRZ  bool
}

// ServerConfig contains web server settings
type ServerConfig struct {
	Host       string
	Port       int
	Production bool
}

// RealtimeConfig contains settings for the SSE stream and log watcher
type RealtimeConfig struct {
	StreamInterval time.Duration // Refresh even without log writes, durations keep ticking
	WatchEnabled   bool
}

// ArchiveConfig contains heard history settings
type ArchiveConfig struct {
	Enabled  bool
	Interval time.Duration
}

// DatabaseConfig contains database-related settings
type DatabaseConfig struct {
	Path          string
	MaxOpenConns  int
	MaxIdleConns  int
	ConnMaxLife   time.Duration
	RetentionDays int // Number of days to retain archived entries (0 = unlimited)

	CleanupInterval time.Duration
	VacuumEnabled   bool
}

// GeoIPConfig contains the GeoIP database path
type GeoIPConfig struct {
	CountryDBPath string
	Enabled       bool
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Reflector: ReflectorConfig{
			LogPath:      getEnv("NXDN_LOG_PATH", ""),
			LogPrefix:    getEnv("NXDN_LOG_PREFIX", ""),
			INIPath:      getEnv("NXDN_INI_PATH", "/etc/NXDNReflector.ini"),
			AutoDiscover: getEnvAsBool("LOG_AUTO_DISCOVER", true),
		},
		Display: DisplayConfig{
			Timezone: getEnv("TIMEZONE", "UTC"),
			GDPR:     getEnvAsBool("GDPR", false),
			ShowQRZ:  getEnvAsBool("SHOW_QRZ", false),
		},
		Server: ServerConfig{
			Host:       getEnv("SERVER_HOST", "0.0.0.0"),
			Port:       getEnvAsInt("SERVER_PORT", 8080),
			Production: getEnvAsBool("SERVER_PRODUCTION", false),
		},
		Realtime: RealtimeConfig{
			StreamInterval: getEnvAsDuration("STREAM_INTERVAL", 2*time.Second),
			WatchEnabled:   getEnvAsBool("WATCH_ENABLED", true),
		},
		Archive: ArchiveConfig{
			Enabled:  getEnvAsBool("ARCHIVE_ENABLED", false),
			Interval: getEnvAsDuration("ARCHIVE_INTERVAL", 30*time.Second),
		},
		Database: DatabaseConfig{
			Path:          getEnv("DB_PATH", "nxdndash.db"),
			MaxOpenConns:  getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:  getEnvAsInt("DB_MAX_IDLE_CONNS", 3),
			ConnMaxLife:   getEnvAsDuration("DB_CONN_MAX_LIFE", time.Hour),
			RetentionDays: getEnvAsInt("DB_RETENTION_DAYS", 30),

			CleanupInterval: getEnvAsDuration("DB_CLEANUP_INTERVAL", 6*time.Hour),
			VacuumEnabled:   getEnvAsBool("DB_VACUUM_ENABLED", false),
		},
		GeoIP: GeoIPConfig{
			CountryDBPath: getEnv("GEOIP_COUNTRY_DB", "geoip/GeoLite2-Country.mmdb"),
			Enabled:       getEnvAsBool("GEOIP_ENABLED", false),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Location returns the display time zone, falling back to UTC
func (c DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions to read environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
