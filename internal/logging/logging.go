// Package logging provides the leveled logger injected into the simulator
// and its collaborators.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel accepts debug, info, warn/warning and error in any case.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// StdLogger writes "[LEVEL] message" lines through a standard library logger.
type StdLogger struct {
	level Level
	out   *log.Logger
}

// New logs to stderr with the standard timestamp flags.
func New(level Level) *StdLogger {
	return NewWithWriter(level, os.Stderr, log.LstdFlags)
}

func NewWithWriter(level Level, w io.Writer, flags int) *StdLogger {
	return &StdLogger{level: level, out: log.New(w, "", flags)}
}

func (l *StdLogger) Level() Level { return l.level }

func (l *StdLogger) logf(level Level, tag, format string, v ...any) {
	if level < l.level {
		return
	}
	l.out.Printf("["+tag+"] "+format, v...)
}

func (l *StdLogger) Debugf(format string, v ...any) { l.logf(LevelDebug, "DEBUG", format, v...) }
func (l *StdLogger) Infof(format string, v ...any)  { l.logf(LevelInfo, "INFO", format, v...) }
func (l *StdLogger) Warnf(format string, v ...any)  { l.logf(LevelWarn, "WARN", format, v...) }
func (l *StdLogger) Errorf(format string, v ...any) { l.logf(LevelError, "ERROR", format, v...) }

// NoOp discards everything.
type NoOp struct{}

func (NoOp) Debugf(format string, v ...any) {}
func (NoOp) Infof(format string, v ...any)  {}
func (NoOp) Warnf(format string, v ...any)  {}
func (NoOp) Errorf(format string, v ...any) {}

func NewNoOp() Logger { return NoOp{} }
