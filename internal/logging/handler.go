// Package logging renders slog records as Azure DevOps pipeline log lines.
//
// The agent recognizes line prefixes such as ##[debug], ##[warning],
// ##[error] and ##[section] and styles them in the run view. Info records
// are written without a prefix. Attributes follow the message as
// key=value pairs.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/bctools/bctools/internal/messages"
)

// LevelSection sits between info and warn and renders as a ##[section] header.
const LevelSection = slog.Level(2)

// EnvSystemDebug is set to "true" when a pipeline run is queued with diagnostics enabled.
const EnvSystemDebug = "SYSTEM_DEBUG"

const (
	markerDebug   = "##[debug]"
	markerSection = "##[section]"
	markerWarning = "##[warning]"
	markerError   = "##[error]"
)

// Logger is the logging collaborator injected into the pipeline components.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Handler.
type Options struct {
	// Level is the minimum level written. Nil means slog.LevelInfo.
	Level slog.Leveler
	// Color wraps each line in an ANSI color chosen by level.
	Color bool
}

// Handler is a slog.Handler that writes pipeline log markers.
type Handler struct {
	out     io.Writer
	mu      *sync.Mutex
	level   slog.Leveler
	palette palette
	attrs   string
	group   string
}

type palette struct {
	debug   *color.Color
	section *color.Color
	warning *color.Color
	err     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		debug:   color.New(color.FgHiBlack),
		section: color.New(color.FgCyan, color.Bold),
		warning: color.New(color.FgYellow),
		err:     color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.debug, p.section, p.warning, p.err} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// NewHandler returns a Handler writing to w.
func NewHandler(w io.Writer, opts *Options) *Handler {
	if opts == nil {
		opts = &Options{}
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		out:     w,
		mu:      &sync.Mutex{},
		level:   level,
		palette: newPalette(opts.Color),
	}
}

// New returns a *slog.Logger backed by a Handler writing to w.
func New(w io.Writer, opts *Options) *slog.Logger {
	return slog.New(NewHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Section writes a ##[section] header.
func Section(logger *slog.Logger, title string) {
	logger.Log(context.Background(), LevelSection, title)
}

// LevelFromEnv returns slog.LevelDebug when pipeline diagnostics are on.
func LevelFromEnv(getenv func(string) string) slog.Level {
	if getenv == nil {
		getenv = os.Getenv
	}
	if debug, err := strconv.ParseBool(strings.TrimSpace(getenv(EnvSystemDebug))); err == nil && debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Enabled reports whether records at level are written.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one line per message line, each carrying the level marker.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	marker, paint := h.decorate(record.Level)

	var attrs strings.Builder
	attrs.WriteString(h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(&attrs, h.group, attr)
		return true
	})

	lines := strings.Split(record.Message, "\n")
	lines[len(lines)-1] += attrs.String()

	var b strings.Builder
	for _, line := range lines {
		text := marker + line
		if paint != nil {
			text = paint.Sprint(text)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.WriteString(h.out, b.String()); err != nil {
		return fmt.Errorf(messages.LoggingWriteFailedFmt, err)
	}
	return nil
}

// WithAttrs returns a Handler that appends attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	derived := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, attr := range attrs {
		appendAttr(&b, h.group, attr)
	}
	derived.attrs = b.String()
	return &derived
}

// WithGroup returns a Handler that qualifies later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	derived := *h
	derived.group = h.group + name + "."
	return &derived
}

func (h *Handler) decorate(level slog.Level) (string, *color.Color) {
	switch {
	case level >= slog.LevelError:
		return markerError, h.palette.err
	case level >= slog.LevelWarn:
		return markerWarning, h.palette.warning
	case level >= LevelSection:
		return markerSection, h.palette.section
	case level >= slog.LevelInfo:
		return "", nil
	default:
		return markerDebug, h.palette.debug
	}
}

func appendAttr(b *strings.Builder, group string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		prefix := group
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			appendAttr(b, prefix, member)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(group)
	b.WriteString(attr.Key)
	b.WriteByte('=')
	b.WriteString(formatValue(attr.Value))
}

func formatValue(value slog.Value) string {
	switch value.Kind() {
	case slog.KindString:
		s := value.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindTime:
		return value.Time().Format(time.RFC3339)
	default:
		return value.String()
	}
}
