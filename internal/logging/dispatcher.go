package logging

import "github.com/rs/zerolog"

// DispatcherLogger writes dispatcher messages through zerolog. Key/value
// pairs become fields; non-string keys and a dangling key are skipped.
type DispatcherLogger struct {
	log zerolog.Logger
}

func NewDispatcherLogger(logger zerolog.Logger) *DispatcherLogger {
	return &DispatcherLogger{log: logger}
}

func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	l.log.Info().Fields(keysAndValues).Msg(msg)
}

func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}
