package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the process-wide log output.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// Format is "json" or "console". Empty follows APP_ENV.
	Format string
	// File, when set, receives logs through a rotating writer instead of stdout.
	File       string
	// Stderr sends console output to stderr, leaving stdout to command output.
	Stderr     bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu     sync.RWMutex
	output io.Writer     = defaultWriter(os.Stdout, "")
	level  zerolog.Level = zerolog.InfoLevel
)

func defaultWriter(w io.Writer, format string) io.Writer {
	if format == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		format = "console"
	}
	if format == "console" {
		return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return w
}

// Configure sets the writer and level used by loggers created afterwards.
func Configure(o Options) error {
	lvl := zerolog.InfoLevel
	if o.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(o.Level))
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		lvl = l
	}
	switch o.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", o.Format)
	}
	var w io.Writer = os.Stdout
	if o.Stderr {
		w = os.Stderr
	}
	if o.File != "" {
		w = &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
		}
	}
	mu.Lock()
	output = defaultWriter(w, o.Format)
	level = lvl
	mu.Unlock()
	return nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a logger tagged with the component field.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	w, lvl := output, level
	mu.RUnlock()
	return NewWithWriter(component, w, lvl)
}

// NewWithWriter builds a logger on an explicit writer.
func NewWithWriter(component string, w io.Writer, lvl zerolog.Level) *ZerologLogger {
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
