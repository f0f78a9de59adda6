package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "15:04:05.000"

// Config selects the level and sinks.
type Config struct {
	Level   string
	File    string
	NoColor bool
}

// Logger owns the sinks behind a zerolog.Logger.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New builds the root logger. A file sink that cannot be opened is an error;
// callers usually fall back to console-only output.
func New(cfg Config) (*Logger, error) {
	return newWithConsole(cfg, os.Stderr)
}

func newWithConsole(cfg Config, console io.Writer) (*Logger, error) {
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z07:00"
	zerolog.ErrorFieldName = "err"

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: consoleTimeFormat,
		NoColor:    cfg.NoColor,
	}}

	var file *os.File
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).
		With().Timestamp().Logger()
	return &Logger{Logger: zl, file: file}, nil
}

// Component derives a child logger tagged with the component name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// SetLevel changes the level of this logger and every child derived afterwards.
// Children derived earlier are capped by the global level, which is also updated.
func (l *Logger) SetLevel(level string) {
	lvl := ParseLevel(level, zerolog.InfoLevel)
	l.Logger = l.Logger.Level(lvl)
	zerolog.SetGlobalLevel(lvl)
}

// RedirectStdLog sends output of the standard library logger through l.
func (l *Logger) RedirectStdLog() {
	log.SetFlags(0)
	log.SetOutput(l.Component("stdlog"))
}

// Close releases the file sink, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps a textual level to zerolog, returning fallback for unknown input.
func ParseLevel(s string, fallback zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return fallback
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return fallback
	}
	return lvl
}
