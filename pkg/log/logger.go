package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

// Level selects the minimum severity that reaches the sink
type Level logging.Level

// Levels accepted by SetLevel, most verbose first
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var (
	current Level
	leveled logging.LeveledBackend
)

// Logger is the leveled logger used by every package
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Notice(args ...interface{})
	Noticef(format string, args ...interface{})

	Warning(args ...interface{})
	Warningf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

// New returns the logger for a named module
func New(module string) Logger {
	return logging.MustGetLogger(module)
}

// SetSink redirects all log output to w, keeping the current level
func SetSink(w io.Writer) {
	formatted := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), format)
	leveled = logging.AddModuleLevel(formatted)
	logging.SetBackend(leveled)
	SetLevel(current)
}

// SetLevel changes the verbosity of all modules
func SetLevel(level Level) {
	current = level
	leveled.SetLevel(toLogging(level), "")
}

// CurrentLevel returns the verbosity set by the last SetLevel call
func CurrentLevel() Level {
	return current
}

// VerbosityLevel maps a count of -v flags to a level: none logs notices,
// one adds info and two or more add debug output.
func VerbosityLevel(verbosity int) Level {
	switch {
	case verbosity >= 2:
		return Debug
	case verbosity == 1:
		return Info
	default:
		return Notice
	}
}

func toLogging(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Notice:
		return logging.NOTICE
	case Warning:
		return logging.WARNING
	default:
		return logging.ERROR
	}
}

func init() {
	current = Notice
	SetSink(os.Stderr)
}
