// Package logger provides module-scoped slog loggers sharing one compact
// text sink whose level and destination are set once at startup.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorWhite  = "\033[37m"
	colorGray   = "\033[90m"
)

// sink is shared by every handler so that loggers created at package init
// follow a later Setup call.
type sink struct {
	mu         sync.Mutex
	w          io.Writer
	level      slog.LevelVar
	withColors bool
}

var root = newSink()

func newSink() *sink {
	s := &sink{w: os.Stderr}
	s.level.Set(slog.LevelInfo)
	return s
}

// Setup directs all loggers to w at the given level
func Setup(level slog.Level, w io.Writer, withColors bool) {
	root.mu.Lock()
	defer root.mu.Unlock()
	root.w = w
	root.withColors = withColors
	root.level.Set(level)
}

// ParseLevel maps debug, info, warn and error to slog levels
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// IsTerminal reports whether f is attached to a character device
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Get returns a logger tagged with the given module name
func Get(module string) *slog.Logger {
	return slog.New(&customHandler{sink: root}).With("module", module)
}

type customHandler struct {
	sink  *sink
	attrs []slog.Attr
	group string
}

func (h *customHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.sink.level.Level()
}

func (h *customHandler) Handle(_ context.Context, record slog.Record) error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	colors := h.sink.withColors

	var color, levelStr string
	switch {
	case record.Level >= slog.LevelError:
		color, levelStr = colorRed, "ERROR"
	case record.Level >= slog.LevelWarn:
		color, levelStr = colorYellow, "WARNING"
	case record.Level >= slog.LevelInfo:
		color, levelStr = colorBlue, "INFO"
	default:
		color, levelStr = colorWhite, "DEBUG"
	}

	var module string
	var args []string
	collect := func(a slog.Attr) bool {
		if a.Key == "module" {
			module = a.Value.String()
			return true
		}
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		args = append(args, fmt.Sprintf("%s=%v", key, a.Value.Any()))
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	record.Attrs(collect)

	var b strings.Builder
	if module != "" {
		if colors {
			fmt.Fprintf(&b, "%s[%s]%s ", colorGray, module, colorReset)
		} else {
			fmt.Fprintf(&b, "[%s] ", module)
		}
	}
	if colors {
		fmt.Fprintf(&b, "%s%s%s: %s", color, levelStr, colorReset, record.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s", levelStr, record.Message)
	}
	if len(args) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(args, ", "))
	}
	fmt.Fprintf(&b, " [%s]\n", record.Time.Format("15:04:05"))

	_, err := io.WriteString(h.sink.w, b.String())
	return err
}

func (h *customHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &customHandler{sink: h.sink, attrs: newAttrs, group: h.group}
}

func (h *customHandler) WithGroup(name string) slog.Handler {
	return &customHandler{sink: h.sink, attrs: h.attrs, group: name}
}
