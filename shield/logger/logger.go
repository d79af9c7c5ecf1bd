package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand   LogType = "CMD"
	TypeComponent LogType = "CMP"
	TypeDB        LogType = "DB"
	TypeSystem    LogType = "SYS"
	TypeWeb       LogType = "WEB"
	TypeError     LogType = "ERR"
)

// CustomHandler prints one coloured line per record, prefixed with the
// process name.
type CustomHandler struct {
	name   string
	out    io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

func NewHandler(name string) *CustomHandler {
	return &CustomHandler{
		name:  name,
		out:   os.Stdout,
		mu:    &sync.Mutex{},
		level: slog.LevelDebug,
	}
}

func (h *CustomHandler) WithLevel(level slog.Leveler) *CustomHandler {
	c := h.clone()
	c.level = level
	return c
}

func (h *CustomHandler) WithOutput(w io.Writer) *CustomHandler {
	c := h.clone()
	c.out = w
	return c
}

func (h *CustomHandler) clone() *CustomHandler {
	return &CustomHandler{
		name:   h.name,
		out:    h.out,
		mu:     h.mu,
		level:  h.level,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.attrs = append(c.attrs, attrs...)
	return c
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	c := h.clone()
	c.groups = append(c.groups, name)
	return c
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(&r) {
		return nil
	}

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	attrs := recordAttrs(&r)
	message := r.Message

	if r.Level >= slog.LevelError {
		location := attrs["error_location"]
		if location == "" {
			if file, line := sourceLocation(&r); file != "" {
				location = fmt.Sprintf("%s:%d", file, line)
			}
		}
		if location != "" {
			message = fmt.Sprintf("%s (%s)", message, location)
		}
		if details := attrs["error"]; details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	}

	if name, user := attrs["name"], attrs["user_name"]; name != "" && user != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, name, user)
	}
	if status := attrs["status"]; status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}
	if took := attrs["took"]; took != "" {
		message = fmt.Sprintf("%s (took %s)", message, took)
	}

	var extra strings.Builder
	prefix := strings.Join(h.groups, ".")
	if prefix != "" {
		prefix += "."
	}
	for _, attr := range h.attrs {
		if !isInternalAttr(attr.Key) {
			fmt.Fprintf(&extra, " %s%s=%v", prefix, attr.Key, attr.Value)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[%s] [%s] [%s%s%s] [%s%s%s] %s%s%s\n",
		colorWhite,
		h.name,
		r.Time.Format("15:04:05"),
		levelColor, levelText, colorWhite,
		colorCyan, logType(attrs["type"]), colorWhite,
		message,
		extra.String(),
		colorReset,
	)
	return err
}

// Disgo is chatty at debug level; these messages never reach the console.
var skippedMessages = []string{
	"locking buckets",
	"unlocking buckets",
	"gateway event",
	"cleaning up bucket",
	"cleaned up rate limit buckets",
	"binary message received",
	"received gateway message",
	"opening gateway connection",
	"locking gateway rate limiter",
	"unlocking gateway rate limiter",
	"sending gateway command",
	"new request",
	"new response",
	"locking rest bucket",
	"unlocking rest bucket",
	"rate limit response headers",
	"sending heartbeat",
}

func shouldSkipLog(r *slog.Record) bool {
	msg := strings.ToLower(r.Message)
	for _, skip := range skippedMessages {
		if strings.Contains(msg, skip) {
			return true
		}
	}
	return false
}

func logType(t string) LogType {
	switch t {
	case "cmd":
		return TypeCommand
	case "component":
		return TypeComponent
	case "db":
		return TypeDB
	case "web":
		return TypeWeb
	case "error":
		return TypeError
	default:
		return TypeSystem
	}
}

func recordAttrs(r *slog.Record) map[string]string {
	attrs := make(map[string]string, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	return attrs
}

func sourceLocation(r *slog.Record) (string, int) {
	if r.PC == 0 {
		return "", 0
	}
	frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
	if frame.File == "" {
		return "", 0
	}
	return filepath.Base(frame.File), frame.Line
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "name", "user_name", "status", "took":
		return true
	}
	return false
}

// Setup installs a CustomHandler named name as the default slog logger.
func Setup(name string, level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(name).WithLevel(level)))
}
