// Package log implements structured logging on top of logrus, with a
// file appender (rotated via lumberjack) layered onto stdout.
package log

import "sync"

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	once   sync.Once
	logger Logger
)

// GetLogger returns the global logger, or a plain logrus logger writing
// to stdout at logrus's default level if Init has not been called yet
// (unit tests import this package without Init).
func GetLogger() Logger {
	if logger == nil {
		return &logrusAdapter{entry: newBareLogger()}
	}
	return logger
}

// Init installs the global logger from cfg. Only the first call has any
// effect.
func Init(cfg *LoggerConfig) error {
	var initErr error
	once.Do(func() {
		l, err := build(cfg)
		if err != nil {
			initErr = err
			return
		}
		logger = l
	})
	return initErr
}
