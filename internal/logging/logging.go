package logging

import (
	"io"
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
)

// Logger is the leveled logger shared by the storage, store and web layers.
// args are printed after msg, one per line.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type StdLogger struct {
	std *log.Logger
}

var _ Logger = (*StdLogger)(nil)

func New(std *log.Logger) *StdLogger {
	if std == nil {
		std = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &StdLogger{std: std}
}

// Discard drops everything; used by tests.
func Discard() *StdLogger {
	return &StdLogger{std: log.New(io.Discard, "", 0)}
}

func (l StdLogger) print(level, msg string, args []interface{}) {
	l.std.Println(level + " " + msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l StdLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l StdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l StdLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l StdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

// RollbarLogger mirrors warnings and errors to Rollbar and prints everything
// through the wrapped std logger.
type RollbarLogger struct {
	StdLogger
}

var _ Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, token, env string) *RollbarLogger {
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetEnabled(token != "")
	return &RollbarLogger{StdLogger: *New(std)}
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(append([]interface{}{msg}, args...)...)
	l.StdLogger.Warn(msg, args...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(append([]interface{}{msg}, args...)...)
	l.StdLogger.Error(msg, args...)
}

// Close flushes pending Rollbar items.
func (l RollbarLogger) Close() {
	rollbar.Close()
}
