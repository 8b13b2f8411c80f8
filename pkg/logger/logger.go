// Package logger provides the application's unified structured-logging framework.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level is a logging severity level.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config controls how the singleton logger is initialized.
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig returns a console logger writing to stdout at info level.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the process-wide logger. Only the first call takes effect.
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the process-wide logger, initializing it with defaults on
// first use if Init was never called.
func Get() *zerolog.Logger {
	Init(DefaultConfig()) // no-op once Init has already run
	return &logger
}

type contextKey string

const (
	ctxKeyRequestID contextKey = "request_id"
)

// WithContext derives a logger enriched with request-scoped fields from ctx.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

// Debug logs at debug level.
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info logs at info level.
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn logs at warn level.
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error logs at error level.
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal logs at fatal level.
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError starts an error-level event carrying err.
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField derives a logger with one extra field attached.
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields derives a logger with several extra fields attached.
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// SchedulerLogger is a component-scoped logger for the scheduling core.
type SchedulerLogger struct {
	base *zerolog.Logger
}

// NewSchedulerLogger creates a logger tagged with component=scheduler.
func NewSchedulerLogger() *SchedulerLogger {
	l := Get().With().Str("component", "scheduler").Logger()
	return &SchedulerLogger{base: &l}
}

// StartSchedule logs the beginning of a schedule attempt for one week.
func (l *SchedulerLogger) StartSchedule(weekStart string, staffCount, occurrenceCount int) {
	l.base.Info().
		Str("week_start", weekStart).
		Int("staff_count", staffCount).
		Int("occurrence_count", occurrenceCount).
		Msg("starting schedule")
}

// ConstraintViolation logs one constraint violation surfaced by the validator.
func (l *SchedulerLogger) ConstraintViolation(constraintType, details string) {
	l.base.Warn().
		Str("constraint_type", constraintType).
		Str("details", details).
		Msg("constraint violation")
}

// Fallback logs that the scheduler fell back from ILP to the greedy solver.
func (l *SchedulerLogger) Fallback(reason string) {
	l.base.Warn().
		Str("reason", reason).
		Msg("falling back to greedy scheduler")
}

// ScheduleComplete logs the outcome of a finished schedule attempt.
func (l *SchedulerLogger) ScheduleComplete(weekStart string, duration time.Duration, algorithm string, assignmentCount int) {
	l.base.Info().
		Str("week_start", weekStart).
		Dur("duration", duration).
		Str("algorithm", algorithm).
		Int("assignment_count", assignmentCount).
		Msg("schedule complete")
}
