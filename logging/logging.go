package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Log writes leveled messages tagged with a scope
type Log interface {
	DebugEnabled() bool
	Debug(...any)
	Debugf(format string, args ...any)
	Info(...any)
	Infof(format string, args ...any)
	Warning(...any)
	Warningf(format string, args ...any)
	Severe(...any)
	Severef(format string, args ...any)
	// Fatal logs at LevelFatal. It does not terminate the process.
	Fatal(...any)
	Fatalf(format string, args ...any)

	LogEnabled(level Level) bool
	Log(level Level, m ...any)
	Logf(level Level, format string, args ...any)

	Scope() string
}

const timeFormat = "2006/01/02 15:04:05.000"

// sink is shared by every logger; mu keeps each line atomic across goroutines
var sink = struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
	utc   bool
}{
	w:     os.Stderr,
	level: LevelInfo,
}

var (
	totalCounter  gometrics.Counter
	warnCounter   gometrics.Counter
	severeCounter gometrics.Counter
	fatalCounter  gometrics.Counter
)

func init() {
	totalCounter = gometrics.NewRegisteredCounter("log.total", gometrics.DefaultRegistry)
	warnCounter = gometrics.NewRegisteredCounter("log.warns", gometrics.DefaultRegistry)
	severeCounter = gometrics.NewRegisteredCounter("log.severes", gometrics.DefaultRegistry)
	fatalCounter = gometrics.NewRegisteredCounter("log.fatals", gometrics.DefaultRegistry)
}

// SetLevel sets minimum level of messages written to the sink
func SetLevel(lvl Level) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.level = lvl
}

// GetLevel returns minimum level of messages written to the sink
func GetLevel() Level {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	return sink.level
}

// SetOutput redirects the sink to w. nil discards all messages.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.w = w
}

// GetLog returns logger tagged with scope
func GetLog(scope string) Log {
	return &scopedLogger{scope: scope}
}

type scopedLogger struct {
	scope string
}

func (l *scopedLogger) Scope() string { return l.scope }

func (l *scopedLogger) LogEnabled(lvl Level) bool { return GetLevel() <= lvl }
func (l *scopedLogger) DebugEnabled() bool        { return l.LogEnabled(LevelDebug) }

func (l *scopedLogger) Debug(m ...any)   { l.write(LevelDebug, "", m) }
func (l *scopedLogger) Info(m ...any)    { l.write(LevelInfo, "", m) }
func (l *scopedLogger) Warning(m ...any) { l.write(LevelWarning, "", m) }
func (l *scopedLogger) Severe(m ...any)  { l.write(LevelSevere, "", m) }
func (l *scopedLogger) Fatal(m ...any)   { l.write(LevelFatal, "", m) }

func (l *scopedLogger) Debugf(format string, args ...any)   { l.write(LevelDebug, format, args) }
func (l *scopedLogger) Infof(format string, args ...any)    { l.write(LevelInfo, format, args) }
func (l *scopedLogger) Warningf(format string, args ...any) { l.write(LevelWarning, format, args) }
func (l *scopedLogger) Severef(format string, args ...any)  { l.write(LevelSevere, format, args) }
func (l *scopedLogger) Fatalf(format string, args ...any)   { l.write(LevelFatal, format, args) }

func (l *scopedLogger) Log(lvl Level, m ...any)                     { l.write(lvl, "", m) }
func (l *scopedLogger) Logf(lvl Level, format string, args ...any) { l.write(lvl, format, args) }

func (l *scopedLogger) write(lvl Level, format string, args []any) {
	var msg string
	if format == "" {
		toks := make([]string, len(args))
		for i, a := range args {
			if s, ok := a.(string); ok {
				toks[i] = s
			} else {
				toks[i] = fmt.Sprintf("%v", a)
			}
		}
		msg = strings.Join(toks, " ")
	} else {
		msg = fmt.Sprintf(format, args...)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()

	if lvl < sink.level {
		return
	}

	totalCounter.Inc(1)
	switch {
	case lvl >= LevelFatal:
		fatalCounter.Inc(1)
	case lvl >= LevelSevere:
		severeCounter.Inc(1)
	case lvl >= LevelWarning:
		warnCounter.Inc(1)
	}

	ts := time.Now()
	if sink.utc {
		ts = ts.UTC()
	}

	line := fmt.Sprintf("%s %s--[%s] %s\n", ts.Format(timeFormat), LevelName(lvl), l.scope, msg)
	// a failing sink has nowhere to report to
	_, _ = io.WriteString(sink.w, line)
}
