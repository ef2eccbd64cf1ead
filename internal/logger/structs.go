package logger

// Console configures logging to stdout and stderr.
type Console struct {
	Enabled bool `toml:"enabled"`
	// UseConsoleWriter prints colored human readable lines instead of JSON.
	UseConsoleWriter bool
}

// Rotation configures one rolling log file. Sizes are megabytes, ages days.
type Rotation struct {
	Name       string `toml:"name"`
	MaxSize    int    `toml:"maxSize"`
	MaxBackups int    `toml:"maxBackups"`
	MaxAge     int    `toml:"maxAge"`
}

// LogFile configures rolling files below Path, one per stream. A stream without a
// name is discarded.
type LogFile struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	Access Rotation `toml:"access"`
	Error  Rotation `toml:"error"`
	Info   Rotation `toml:"info"`
	Trace  Rotation `toml:"trace"`
	Warn   Rotation `toml:"warn"`
}

// Log is the logger section of the configuration.
type Log struct {
	LogLevel string // trace, debug, info, warn, error
	LogEnv   string

	// EnableAccessLogToConsole also prints the http access log when Console is enabled.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // skip /checkalive in the access log

	AppName     string
	ServiceName string

	Console Console
	File    LogFile `toml:"file"`
}
