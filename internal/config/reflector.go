package config

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var unsafeINIChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// ReflectorINI is the reflector's own INI file, kept as trimmed lines.
// Lookups never fail: an unknown section or key is the empty string.
type ReflectorINI struct {
	path  string
	lines []string
}

// LoadReflectorINI reads the reflector INI at path
func LoadReflectorINI(path string) (*ReflectorINI, error) {
	file, err := os.Open(path)
	if err != nil {
		return &ReflectorINI{path: path}, fmt.Errorf("failed to open reflector config %s: %w", path, err)
	}
	defer file.Close()

	ini := &ReflectorINI{path: path}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		ini.lines = append(ini.lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return ini, fmt.Errorf("failed to read reflector config %s: %w", path, err)
	}
	return ini, nil
}

// ParseReflectorINI builds a ReflectorINI from already loaded text
func ParseReflectorINI(text string) *ReflectorINI {
	ini := &ReflectorINI{}
	for _, line := range strings.Split(text, "\n") {
		ini.lines = append(ini.lines, strings.TrimSpace(line))
	}
	return ini
}

// Path returns the file the INI was loaded from
func (c *ReflectorINI) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Item returns the value of key in section. Section and key are reduced to
// [A-Za-z0-9_-] first; anything missing yields "".
func (c *ReflectorINI) Item(section, key string) string {
	if c == nil || len(c.lines) == 0 {
		return ""
	}

	section = unsafeINIChars.ReplaceAllString(section, "")
	key = unsafeINIChars.ReplaceAllString(key, "")
	if section == "" || key == "" {
		return ""
	}

	header := "[" + section + "]"
	start := -1
	for i, line := range c.lines {
		if line == header {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}

	for _, line := range c.lines[start:] {
		if strings.HasPrefix(line, "[") {
			return ""
		}
		if strings.HasPrefix(line, key+"=") {
			return line[len(key)+1:]
		}
	}
	return ""
}

// LogDir returns the reflector's log directory ([Log] FilePath)
func (c *ReflectorINI) LogDir() string {
	return c.Item("Log", "FilePath")
}

// LogPrefix returns the reflector's log file prefix ([Log] FileRoot)
func (c *ReflectorINI) LogPrefix() string {
	return c.Item("Log", "FileRoot")
}
