package logger

import corelogger "github.com/d1vyadharsh1n1/MetroX/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component, writing to the output set
// by Configure. Without Configure the format follows APP_ENV.
func New(component string) Logger {
	return NewZerologLogger(component)
}
