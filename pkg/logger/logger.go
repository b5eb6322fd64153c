package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/themeradar/pkg/config"
)

// Logger wraps a zerolog.Logger with the field helpers used across the radar
// ⭐ SSOT: 모든 로깅은 이 패키지를 통해서만 수행
type Logger struct {
	zlog zerolog.Logger
}

// New builds the process logger from config, writing to stdout
// ⭐ SSOT: zerolog 인스턴스는 여기서만 생성
func New(cfg *config.Config) *Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds a logger on w. LOG_FORMAT=console|pretty wraps w in a
// human-readable writer; anything else emits one JSON object per line.
// The level is per instance; the zerolog global level is left alone.
func NewWithWriter(cfg *config.Config, w io.Writer) *Logger {
	out := w
	switch strings.ToLower(cfg.LogFormat) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zlog := zerolog.New(out).
		Level(ParseLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Str("service", "themeradar").
		Str("env", cfg.Env).
		Logger()

	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// ParseLevel maps LOG_LEVEL to a zerolog level; unknown values mean info
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Level reports the minimum level this logger writes
func (l *Logger) Level() zerolog.Level {
	return l.zlog.GetLevel()
}

func (l *Logger) Debug(msg string) { l.zlog.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zlog.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zlog.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zlog.Error().Msg(msg) }

// Component tags entries with the emitting package
func (l *Logger) Component(name string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str("component", name) })
}

// WithRun tags entries with a pipeline run ID
func (l *Logger) WithRun(runID string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str("run_id", runID) })
}

// WithStage tags entries with a stage short name (S0..S5)
func (l *Logger) WithStage(stage string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str("stage", stage) })
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

// WithFields adds every key of fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

func (l *Logger) WithError(err error) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Err(err) })
}

func (l *Logger) with(fn func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{zlog: fn(l.zlog.With()).Logger()}
}
