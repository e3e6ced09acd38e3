package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/kingrea/modpatch/internal/config"
	"github.com/kingrea/modpatch/internal/logbook"
)

// Logger fans engine diagnostics out to .modpatch/logs/modpatch.log and,
// optionally, a console. Warnings print yellow and errors red when the
// console is a terminal.
type Logger struct {
	book    *logbook.Logbook
	console io.Writer

	mu       sync.Mutex
	warnTint *color.Color
	errTint  *color.Color
}

// Option adjusts a Logger.
type Option func(*Logger)

// WithConsole mirrors every line to w. mode is one of config.ColorAuto,
// config.ColorOn or config.ColorOff.
func WithConsole(w io.Writer, mode string) Option {
	return func(l *Logger) {
		l.console = w
		if useColor(w, mode) {
			l.warnTint.EnableColor()
			l.errTint.EnableColor()
		} else {
			l.warnTint.DisableColor()
			l.errTint.DisableColor()
		}
	}
}

// New wraps an existing logbook. A nil book drops file output.
func New(book *logbook.Logbook, opts ...Option) *Logger {
	l := &Logger{
		book:     book,
		warnTint: color.New(color.FgYellow),
		errTint:  color.New(color.FgRed, color.Bold),
	}
	l.warnTint.DisableColor()
	l.errTint.DisableColor()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open creates the project logger described by cfg. Console output goes to
// stderr when log.console is set; colorMode overrides log.color when not empty.
func Open(cfg *config.Config, colorMode string) (*Logger, error) {
	book, err := logbook.New(cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	var opts []Option
	if cfg.Project.Log.Console {
		mode := cfg.Project.Log.Color
		if strings.TrimSpace(colorMode) != "" {
			mode = colorMode
		}
		opts = append(opts, WithConsole(os.Stderr, mode))
	}
	return New(book, opts...), nil
}

// Path returns the log file, or "" when file output is disabled.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.book.Path()
}

// Log records an informational line.
func (l *Logger) Log(format string, args ...any) {
	l.write(logbook.LevelInfo, nil, format, args...)
}

// Warn records a warning.
func (l *Logger) Warn(format string, args ...any) {
	l.write(logbook.LevelWarn, l.tint(logbook.LevelWarn), format, args...)
}

// Error records an error.
func (l *Logger) Error(format string, args ...any) {
	l.write(logbook.LevelError, l.tint(logbook.LevelError), format, args...)
}

// Printf writes a plain informational line. It exists for callers that
// only need a Printf-shaped sink.
func (l *Logger) Printf(format string, args ...any) {
	l.Log(format, args...)
}

func (l *Logger) tint(level logbook.Level) *color.Color {
	if l == nil {
		return nil
	}
	if level == logbook.LevelWarn {
		return l.warnTint
	}
	return l.errTint
}

func (l *Logger) write(level logbook.Level, tint *color.Color, format string, args ...any) {
	if l == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	l.book.Append(level, line)
	if l.console == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level != logbook.LevelInfo {
		line = string(level) + ": " + line
	}
	if tint != nil {
		line = tint.Sprint(line)
	}
	fmt.Fprintln(l.console, line)
}

func useColor(w io.Writer, mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case config.ColorOn:
		return true
	case config.ColorOff:
		return false
	}
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
