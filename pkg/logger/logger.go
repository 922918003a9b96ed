// Package logger provides a colourised slog handler for the CLI.
package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Options configure a Handler.
type Options struct {
	// Level is the minimum level written. Defaults to info.
	Level slog.Leveler
	// TimeFormat of the leading timestamp; empty hides it.
	TimeFormat string
	// NoColor disables ANSI escapes.
	NoColor bool
}

// Handler writes one human readable line per record.
type Handler struct {
	opts   Options
	attrs  []slog.Attr
	groups []string

	mu  *sync.Mutex
	out io.Writer
}

// NewHandler creates a Handler writing to out.
func NewHandler(out io.Writer, opts *Options) *Handler {
	h := &Handler{out: out, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

// New returns a logger writing to out at the named level.
func New(out io.Writer, level string) *slog.Logger {
	return slog.New(NewHandler(out, &Options{
		Level:      ParseLevel(level),
		TimeFormat: time.TimeOnly,
	}))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Err is the attribute used for errors.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "<nil>")
	}
	return slog.String("err", err.Error())
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if h.opts.NoColor {
		c.DisableColor()
	}
	return c.Sprint(text)
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var bf bytes.Buffer

	if h.opts.TimeFormat != "" && !r.Time.IsZero() {
		bf.WriteString(h.paint(r.Time.Format(h.opts.TimeFormat), color.Faint))
		bf.WriteByte(' ')
	}

	switch {
	case r.Level >= slog.LevelError:
		bf.WriteString(h.paint("ERROR", color.FgRed, color.Bold))
	case r.Level >= slog.LevelWarn:
		bf.WriteString(h.paint("WARN ", color.FgYellow))
	case r.Level >= slog.LevelInfo:
		bf.WriteString(h.paint("INFO ", color.FgGreen))
	default:
		bf.WriteString(h.paint("DEBUG", color.FgCyan))
	}
	bf.WriteByte(' ')
	bf.WriteString(r.Message)

	prefix := h.prefix()
	write := func(prefix string, a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		key := prefix + a.Key
		keyColor := color.FgCyan
		if strings.Contains(a.Key, "err") {
			keyColor = color.FgRed
		}
		fmt.Fprintf(&bf, " %s%s", h.paint(key+"=", keyColor), a.Value.String())
	}
	for _, a := range h.attrs {
		write("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(prefix, a)
		return true
	})
	bf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(bf.Bytes())
	return err
}

func (h *Handler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

// WithAttrs binds attrs under the groups open at this point.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append([]slog.Attr{}, h.attrs...)
	prefix := h.prefix()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}
