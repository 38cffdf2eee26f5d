package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, lvl Level) *bytes.Buffer {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	SetLevel(lvl)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return buf
}

func count(name string) int64 {
	return gometrics.DefaultRegistry.Get(name).(gometrics.Counter).Count()
}

func TestParseLevel(t *testing.T) {
	assert := assert.New(t)

	for name, lvl := range map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelWarning,
		"Warning": LevelWarning,
		"severe":  LevelSevere,
		"fatal":   LevelFatal,
	} {
		l, ok := ParseLevelP(name)
		assert.True(ok, name)
		assert.Equal(lvl, l, name)
	}

	l, ok := ParseLevelP("verbose")
	assert.False(ok)
	assert.Equal(LevelDebug, l)
	assert.Equal(LevelDebug, ParseLevel("verbose"))

	assert.Equal("SEVERE", LevelSevere.String())
	assert.Equal("UNKNOWN", LevelName(Level(42)))
}

func TestLogFormat(t *testing.T) {
	assert := assert.New(t)
	buf := capture(t, LevelDebug)

	log := GetLog("kf")
	assert.Equal("kf", log.Scope())

	log.Warningf("innovation %d rejected", 3)
	log.Info("state", 1.5, "ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(lines, 2)

	re := regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\.\d{3} WARNING--\[kf\] innovation 3 rejected$`)
	assert.Regexp(re, lines[0])
	assert.True(strings.HasSuffix(lines[1], "INFO--[kf] state 1.5 ok"))
}

func TestLogLevelFilter(t *testing.T) {
	assert := assert.New(t)
	buf := capture(t, LevelWarning)

	log := GetLog("filter")
	assert.False(log.DebugEnabled())
	assert.False(log.LogEnabled(LevelInfo))
	assert.True(log.LogEnabled(LevelSevere))

	log.Debug("hidden")
	log.Info("hidden")
	assert.Empty(buf.String())

	log.Severe("visible")
	log.Logf(LevelFatal, "still %s", "running")
	out := buf.String()
	assert.Contains(out, "SEVERE--[filter] visible")
	assert.Contains(out, "FATAL--[filter] still running")
	assert.NotContains(out, "hidden")
}

func TestLogCounters(t *testing.T) {
	assert := assert.New(t)
	capture(t, LevelInfo)

	total, warns, severes, fatals := count("log.total"), count("log.warns"), count("log.severes"), count("log.fatals")

	log := GetLog("counters")
	log.Debug("filtered out")
	log.Info("one")
	log.Warning("two")
	log.Severe("three")
	log.Fatal("four")

	assert.Equal(total+4, count("log.total"))
	assert.Equal(warns+1, count("log.warns"))
	assert.Equal(severes+1, count("log.severes"))
	assert.Equal(fatals+1, count("log.fatals"))
}

func TestLogConcurrent(t *testing.T) {
	assert := assert.New(t)
	buf := capture(t, LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log := GetLog("worker")
			for j := 0; j < 100; j++ {
				log.Infof("message %d", j)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(lines, 800)
	for _, line := range lines {
		assert.Contains(line, "INFO--[worker] message ")
	}
}

func TestConfigure(t *testing.T) {
	assert := assert.New(t)
	t.Cleanup(func() {
		assert.NoError(Close())
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})

	path := filepath.Join(t.TempDir(), "kf.log")
	cfg := &Config{
		Level:    LevelWarning,
		Filename: path,
		Append:   true,
		MaxSize:  1,
	}
	assert.NoError(Configure(cfg))
	assert.Equal(LevelWarning, GetLevel())

	log := GetLog("file")
	log.Info("dropped")
	log.Warning("kept")
	assert.NoError(Close())

	data, err := os.ReadFile(path)
	assert.NoError(err)
	assert.Contains(string(data), "WARNING--[file] kept")
	assert.NotContains(string(data), "dropped")

	cfg.RotateSchedule = "not a schedule"
	assert.Error(Configure(cfg))

	assert.NoError(Configure(&Config{Filename: ".", Level: LevelDebug}))
	assert.Equal(LevelDebug, GetLevel())
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	cfg, err := LoadConfig(strings.NewReader("level: severe\nfilename: /tmp/kf.log\nmaxBackups: 3\n"))
	assert.NoError(err)
	assert.Equal(LevelSevere, cfg.Level)
	assert.Equal("/tmp/kf.log", cfg.Filename)
	assert.Equal(3, cfg.MaxBackups)
	assert.Equal(DefaultConfig.MaxAge, cfg.MaxAge)

	cfg, err = LoadConfig(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(LevelInfo, cfg.Level)

	_, err = LoadConfig(strings.NewReader("level: loud\n"))
	assert.Error(err)
}
