package log

import "gopkg.in/natefinch/lumberjack.v2"

// AddFileAppender attaches a rotated file writer. Filename empty is a
// no-op so callers can pass a zero-value FileAppenderOpt unconditionally.
func (m *MultiWriter) AddFileAppender(opt FileAppenderOpt) *MultiWriter {
	if opt.Filename == "" {
		return m
	}
	m.writers = append(m.writers, &lumberjack.Logger{
		Filename:   opt.Filename,
		MaxSize:    opt.MaxSize,
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAge,
		Compress:   opt.Compress,
	})
	return m
}
