package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerWritesPlainLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{NoColor: true}))
	log.With("room", "c1").WithGroup("msg").Info("added", "id", "m1")

	got := strings.TrimSpace(buf.String())
	want := "INFO  added room=c1 msg.id=m1"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{NoColor: true, Level: slog.LevelWarn}))
	log.Info("hidden")
	log.Warn("shown", Err(errors.New("boom")))

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Fatalf("info should be filtered: %q", got)
	}
	if !strings.Contains(got, "WARN  shown err=boom") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
