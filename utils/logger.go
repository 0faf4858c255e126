package utils

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides structured, leveled logging throughout the application.
// It keeps printf-style call sites over a zerolog console backend.
type Logger struct {
	log zerolog.Logger
}

// NewLogger creates a Logger writing human-readable output to stdout.
// The level comes from LOG_LEVEL (default debug).
func NewLogger() *Logger {
	level := zerolog.DebugLevel
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if parsed, err := zerolog.ParseLevel(s); err == nil {
			level = parsed
		}
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	return &Logger{
		log: zerolog.New(output).Level(level).With().Timestamp().Logger(),
	}
}

// WithComponent returns a Logger tagged with a component field.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{log: l.log.With().Str("component", name).Logger()}
}

func (l *Logger) Info(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
