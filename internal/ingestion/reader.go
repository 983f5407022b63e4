package ingestion

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// lineMarker is what every record line of the reflector log starts with
const lineMarker = "M:"

// maxLineBytes bounds a single log line
const maxLineBytes = 1024 * 1024

// LineReader reads the reflector's daily log in full on every call.
// The reflector owns and appends to the file; this reader never writes.
type LineReader struct {
	dir    string
	prefix string
	logger *pterm.Logger
}

// NewLineReader creates a reader for <dir>/<prefix>-YYYY-MM-DD.log files
func NewLineReader(dir, prefix string, logger *pterm.Logger) *LineReader {
	return &LineReader{
		dir:    dir,
		prefix: prefix,
		logger: logger,
	}
}

// Dir returns the log directory
func (r *LineReader) Dir() string {
	return r.dir
}

// Prefix returns the log file prefix
func (r *LineReader) Prefix() string {
	return r.prefix
}

// PathFor returns the log file for the UTC day containing t
func (r *LineReader) PathFor(t time.Time) string {
	return filepath.Join(r.dir, DailyFileName(r.prefix, t))
}

// DailyFileName returns "<prefix>-YYYY-MM-DD.log" for the UTC day of t
func DailyFileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s.log", prefix, t.UTC().Format("2006-01-02"))
}

// Lines returns the record lines of the log for the day containing now.
// A missing or unreadable file yields no lines: it means no data yet.
func (r *LineReader) Lines(now time.Time) []string {
	return r.ReadLines(r.PathFor(now))
}

// ReadLines returns every line of path starting with the record marker,
// in file order
func (r *LineReader) ReadLines(path string) []string {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug("Reflector log does not exist yet",
				r.logger.Args("path", path))
		} else if os.IsPermission(err) {
			r.logger.Error("Permission denied accessing reflector log",
				r.logger.Args("path", path, "error", err))
		} else {
			r.logger.Warn("Failed to open reflector log",
				r.logger.Args("path", path, "error", err))
		}
		return []string{}
	}
	defer file.Close()

	lines := []string{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, lineMarker) {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		// keep what was read so far; the tail is still being written
		r.logger.WithCaller().Warn("Scanner error while reading reflector log",
			r.logger.Args("path", path, "lines_read", len(lines), "error", err))
	}

	r.logger.Trace("Read reflector log",
		r.logger.Args("path", path, "lines", len(lines)))

	return lines
}
