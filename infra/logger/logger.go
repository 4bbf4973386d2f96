package logger

import corelogger "github.com/kilianp07/ldarsim/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards every entry.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. The output format is selected
// via the APP_ENV variable and the level via LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
