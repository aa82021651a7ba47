package log

// LoggerConfig configures the global logger: level, output pattern, and
// an optional rotated file appender alongside stdout.
type LoggerConfig struct {
	Level   string `mapstructure:"level"`
	Pattern string `mapstructure:"pattern"`
	Time    string `mapstructure:"time"`
	File    FileAppenderOpt `mapstructure:"file"`
}

// FileAppenderOpt configures the lumberjack-backed rotating file
// appender. Filename empty disables it.
type FileAppenderOpt struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns the logger configuration pcapflow runs with when
// the user supplies none.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:   "info",
		Pattern: "%time [%level] %msg %field",
		Time:    "2006-01-02T15:04:05.000Z07:00",
	}
}
