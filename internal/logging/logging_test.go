package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(New(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestPrefix(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, log.InfoLevel).Info("rendered")
	if !strings.Contains(buf.String(), "[QR]") {
		t.Errorf("output %q lacks prefix", buf.String())
	}
}

func TestParseUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Parse(&buf, "chatty")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("unknown level should default to info")
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.InfoLevel)
	if FromContext(WithLogger(context.Background(), l)) != l {
		t.Error("logger not carried by context")
	}
	if FromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield log.Default()")
	}
}
