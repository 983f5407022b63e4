package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nxdndash/internal/config"
	"nxdndash/internal/parser/nxdn"

	"github.com/pterm/pterm"
)

// DefaultLogPrefix is the reflector's stock log file prefix
const DefaultLogPrefix = "NXDNReflector"

// defaultLogDirs are probed when neither the environment nor the INI names
// a log directory
var defaultLogDirs = []string{
	"/var/log/nxdnreflector",
	"/var/log/NXDNReflector",
	"/var/log/pi-star",
	"/var/log/mmdvm",
	"logs",
}

// Location is where the reflector writes its daily logs
type Location struct {
	Dir    string
	Prefix string
	Source string // env, ini, auto or default
	Valid  bool   // a log in the expected format was found there
}

// ReflectorDetector locates the reflector's log directory
type ReflectorDetector struct {
	logger        *pterm.Logger
	configuredDir string
	prefix        string
	ini           *config.ReflectorINI
	autoDiscover  bool
	candidates    []string
	parser        *nxdn.Parser
}

// NewReflectorDetector creates a detector from the reflector settings and
// the reflector's own INI (which may be nil)
func NewReflectorDetector(cfg config.ReflectorConfig, ini *config.ReflectorINI, logger *pterm.Logger) *ReflectorDetector {
	prefix := cfg.LogPrefix
	if prefix == "" {
		prefix = ini.LogPrefix()
	}
	if prefix == "" {
		prefix = DefaultLogPrefix
	}

	return &ReflectorDetector{
		logger:        logger,
		configuredDir: cfg.LogPath,
		prefix:        prefix,
		ini:           ini,
		autoDiscover:  cfg.AutoDiscover,
		candidates:    defaultLogDirs,
		parser:        nxdn.NewParser(logger),
	}
}

func (d *ReflectorDetector) Name() string {
	return "nxdnreflector"
}

// Detect resolves the log location. Priority:
//  1. NXDN_LOG_PATH, used as-is when set (auto-discovery disabled)
//  2. [Log] FilePath from the reflector INI
//  3. the first default directory holding a log in the expected format
//
// Detect always returns a location; Valid is false when nothing confirmed it.
func (d *ReflectorDetector) Detect() *Location {
	d.logger.Trace("Detecting reflector log location...")

	if d.configuredDir != "" {
		loc := &Location{Dir: d.configuredDir, Prefix: d.prefix, Source: "env"}
		loc.Valid = d.validate(loc.Dir)
		if loc.Valid {
			d.logger.Info("Using configured NXDN_LOG_PATH (auto-discovery disabled)",
				d.logger.Args("dir", loc.Dir, "prefix", loc.Prefix))
		} else {
			d.logger.Warn("Configured NXDN_LOG_PATH has no reflector log yet",
				d.logger.Args("dir", loc.Dir, "prefix", loc.Prefix))
		}
		return loc
	}

	if dir := d.ini.LogDir(); dir != "" {
		loc := &Location{Dir: dir, Prefix: d.prefix, Source: "ini"}
		loc.Valid = d.validate(dir)
		if loc.Valid || !d.autoDiscover {
			d.logger.Info("Using log directory from reflector INI",
				d.logger.Args("dir", dir, "prefix", d.prefix, "ini", d.ini.Path(), "valid", loc.Valid))
			return loc
		}
		d.logger.Warn("Log directory from reflector INI has no reflector log, trying auto-discovery",
			d.logger.Args("dir", dir))
	}

	if d.autoDiscover {
		d.logger.Debug("Using auto-discovery for reflector logs",
			d.logger.Args("LOG_AUTO_DISCOVER", true))
		for _, dir := range d.candidates {
			d.logger.Trace("Checking", d.logger.Args("dir", dir))
			if d.validate(dir) {
				d.logger.Info("✓ Reflector log directory detected", d.logger.Args("dir", dir, "prefix", d.prefix))
				return &Location{Dir: dir, Prefix: d.prefix, Source: "auto", Valid: true}
			}
		}
	}

	fallback := d.ini.LogDir()
	if fallback == "" {
		fallback = d.candidates[0]
	}
	d.logger.Warn("No reflector log found, waiting for one to appear",
		d.logger.Args(
			"dir", fallback,
			"prefix", d.prefix,
			"hint", "Set NXDN_LOG_PATH in .env or NXDN_INI_PATH to the reflector's INI"))
	return &Location{Dir: fallback, Prefix: d.prefix, Source: "default"}
}

// validate reports whether dir holds at least one <prefix>-*.log whose first
// record line is in the reflector format. The newest file is checked.
func (d *ReflectorDetector) validate(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		d.logger.Trace("Directory not accessible", d.logger.Args("dir", dir))
		return false
	}

	matches, err := filepath.Glob(filepath.Join(dir, d.prefix+"-*.log"))
	if err != nil || len(matches) == 0 {
		d.logger.Trace("No reflector logs in directory", d.logger.Args("dir", dir))
		return false
	}
	sort.Strings(matches)
	newest := matches[len(matches)-1]

	if !d.isReflectorFormat(newest) {
		d.logger.WithCaller().Warn("Format invalid - not an NXDNReflector log", d.logger.Args("path", newest))
		return false
	}
	return true
}

func (d *ReflectorDetector) isReflectorFormat(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "M:") {
			continue
		}
		return d.parser.CanParse(line)
	}

	// nothing but I:/E: lines so far still counts as the reflector's file
	return true
}
