package logging

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is log message severity
type Level int

const (
	LevelDebug   Level = 10
	LevelInfo    Level = 20
	LevelWarning Level = 30
	LevelSevere  Level = 40
	LevelFatal   Level = 50
)

var levelNames = map[Level]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarning: "WARNING",
	LevelSevere:  "SEVERE",
	LevelFatal:   "FATAL",
}

// String returns level name
func (lvl Level) String() string {
	return LevelName(lvl)
}

// UnmarshalYAML decodes level given by its name
func (lvl *Level) UnmarshalYAML(value *yaml.Node) error {
	l, ok := ParseLevelP(value.Value)
	if !ok {
		return fmt.Errorf("invalid log level: %q", value.Value)
	}
	*lvl = l
	return nil
}

// ParseLevel returns level with the given name.
// Unknown names parse as LevelDebug.
func ParseLevel(name string) Level {
	lvl, _ := ParseLevelP(name)
	return lvl
}

// ParseLevelP returns level with the given name and reports whether the name is known.
func ParseLevelP(name string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarning, true
	case "SEVERE", "ERROR":
		return LevelSevere, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelDebug, false
	}
}

// LevelName returns name of the level
func LevelName(lvl Level) string {
	if name, ok := levelNames[lvl]; ok {
		return name
	}
	return "UNKNOWN"
}
