package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug level", "debug", "text"},
		{"info level", "info", "text"},
		{"warn level", "warn", "text"},
		{"error level", "error", "text"},
		{"json format", "info", "json"},
		{"default level", "unknown", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.level, tt.format)
			if log == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestLevelForVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      string
	}{
		{0, "error"},
		{1, "warn"},
		{2, "info"},
		{3, "debug"},
		{7, "debug"},
		{-1, "error"},
	}

	for _, tt := range tests {
		if got := LevelForVerbosity(tt.verbosity); got != tt.want {
			t.Errorf("LevelForVerbosity(%d) = %q, want %q", tt.verbosity, got, tt.want)
		}
	}
}

func TestNewSilentLogger(t *testing.T) {
	log := NewSilent()
	if log == nil {
		t.Fatal("expected non-nil logger")
	}

	// Should not panic when logging
	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")
}

func TestLoggerWithFields(t *testing.T) {
	log := New("info", "text")

	log2 := log.WithField("kind", "sites")
	if log2 == nil {
		t.Fatal("expected non-nil logger from WithField")
	}

	log3 := log.WithFields(map[string]interface{}{
		"kind": "users",
		"key":  "bsmith",
	})
	if log3 == nil {
		t.Fatal("expected non-nil logger from WithFields")
	}
}

func TestOperationLogger(t *testing.T) {
	log := New("info", "text")

	op := log.StartOperation("sites")
	if op == nil {
		t.Fatal("expected non-nil operation logger")
	}

	// Should not panic
	op.Update("applying records")
	time.Sleep(10 * time.Millisecond)
	op.Complete("done")
}

func TestCleanFormatterFields(t *testing.T) {
	f := &CleanFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "Created Site",
		Data: logrus.Fields{
			"kind":    "sites",
			"key":     "HQ",
			"elapsed": "12ms", // skipped by formatter
		},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	s := string(out)
	for _, want := range []string{"Created Site", "kind=sites", "key=HQ"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q: %q", want, s)
		}
	}
	if strings.Contains(s, "elapsed") {
		t.Errorf("elapsed field should be suppressed: %q", s)
	}
}
