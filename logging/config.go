package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

// Config configures the process-wide log sink.
//
// Filename "-" writes to stdout, "." discards everything and an empty
// Filename writes to stderr. Any other value is a file rotated by size,
// age or RotateSchedule.
type Config struct {
	Level          Level  `yaml:"level"`
	Filename       string `yaml:"filename"`
	Console        bool   `yaml:"console"`
	Append         bool   `yaml:"append"`
	RotateSchedule string `yaml:"rotateSchedule"`
	MaxSize        int    `yaml:"maxSize"`
	MaxBackups     int    `yaml:"maxBackups"`
	MaxAge         int    `yaml:"maxAge"`
	Compress       bool   `yaml:"compress"`
	UTC            bool   `yaml:"utc"`
}

// DefaultConfig writes INFO and above to stderr
var DefaultConfig = Config{
	Level:      LevelInfo,
	MaxSize:    10,
	MaxBackups: 1,
	MaxAge:     7,
}

var (
	rotateCron *cron.Cron
	fileWriter *lumberjack.Logger
)

// LoadConfig decodes YAML log configuration from r on top of DefaultConfig
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode log config: %w", err)
	}
	return &cfg, nil
}

// Configure sets up the process-wide sink according to cfg.
// A previously configured log file is closed.
func Configure(cfg *Config) error {
	if cfg == nil {
		c := DefaultConfig
		cfg = &c
	}

	if err := Close(); err != nil {
		return err
	}

	var w io.Writer
	switch cfg.Filename {
	case ".":
		w = io.Discard
	case "-":
		w = os.Stdout
	case "":
		w = os.Stderr
	default:
		lj := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  !cfg.UTC,
		}
		if !cfg.Append {
			if err := lj.Rotate(); err != nil {
				return fmt.Errorf("failed to rotate log file %s: %w", cfg.Filename, err)
			}
		}
		if len(cfg.RotateSchedule) > 0 {
			c := cron.New()
			if _, err := c.AddFunc(cfg.RotateSchedule, func() { _ = lj.Rotate() }); err != nil {
				lj.Close()
				return fmt.Errorf("invalid log rotate schedule %q: %w", cfg.RotateSchedule, err)
			}
			c.Start()
			rotateCron = c
		}
		fileWriter = lj
		w = lj
		if cfg.Console {
			w = io.MultiWriter(lj, os.Stdout)
		}
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.w = w
	sink.level = cfg.Level
	sink.utc = cfg.UTC

	return nil
}

// Close stops scheduled rotation and closes the log file if any.
// The sink falls back to stderr.
func Close() error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	if rotateCron != nil {
		rotateCron.Stop()
		rotateCron = nil
	}

	var err error
	if fileWriter != nil {
		err = fileWriter.Close()
		fileWriter = nil
		sink.w = os.Stderr
	}

	return err
}
