package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	l.Debug("hidden", "k", 1)
	l.Info("shown", "program", "Monday Show")
	l.Error("failed", errors.New("boom"), "file", "2024/01/01.yaml")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %q", out)
	}
	for _, want := range []string{"shown", "program=", "Monday Show", "failed", "boom", "2024/01/01.yaml"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestErrorFieldKeepsGlobalName(t *testing.T) {
	before := zerolog.ErrorFieldName
	var buf bytes.Buffer
	New(&buf, LevelInfo).Error("load failed", errors.New("boom"))

	if zerolog.ErrorFieldName != before {
		t.Fatalf("zerolog.ErrorFieldName = %q, want %q", zerolog.ErrorFieldName, before)
	}
	if !strings.Contains(buf.String(), "err=") {
		t.Fatalf("error field missing: %q", buf.String())
	}
}

func TestZeroAndNopLoggersAreSilent(t *testing.T) {
	var zero Logger
	zero.Info("nothing")
	zero.Error("nothing", errors.New("x"))
	if zero.DebugEnabled() {
		t.Fatal("zero logger reports debug enabled")
	}

	n := Nop()
	n.Warn("nothing")
	if n.DebugEnabled() {
		t.Fatal("nop logger reports debug enabled")
	}
}

func TestWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug).With("run", "abc")
	l.Debug("hello")
	if !strings.Contains(buf.String(), "abc") {
		t.Fatalf("derived field missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"", LevelInfo, false},
		{"Warning", LevelWarn, false},
		{"ERROR", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
