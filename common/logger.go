package common

import (
	"fmt"
	"log"
)

const (
	confLoggerLevel = "relay.log.level"
)

type Logger interface {
	Debug(string, ...interface{})
	Info(string, ...interface{})
	Error(string, ...interface{})
}

type LoggerLevel int

const (
	Error LoggerLevel = iota
	Info
	Debug
)

func (l LoggerLevel) String() string {
	switch l {
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	case Error:
		return "ERROR"
	case Info:
		return "INFO"
	case Debug:
		return "DEBUG"
	}
}

// Prefixes every line emitted by the given logger with the formatted
// value.  Used to tag component output, e.g. "Table(main): ..."
func FormatLogger(logger Logger, format string, args ...interface{}) Logger {
	return &formattedLogger{logger, fmt.Sprintf(format, args...)}
}

type standardLogger struct {
	level LoggerLevel
	out   *log.Logger
}

func NewStandardLogger(c Config) Logger {
	return &standardLogger{LoggerLevel(c.OptionalInt(confLoggerLevel, int(Debug))), log.Default()}
}

func (s *standardLogger) print(level LoggerLevel, format string, vals ...interface{}) {
	if s.level >= level {
		s.out.Printf("[%v] %v", level, fmt.Sprintf(format, vals...))
	}
}

func (s *standardLogger) Debug(format string, vals ...interface{}) {
	s.print(Debug, format, vals...)
}

func (s *standardLogger) Info(format string, vals ...interface{}) {
	s.print(Info, format, vals...)
}

func (s *standardLogger) Error(format string, vals ...interface{}) {
	s.print(Error, format, vals...)
}

type formattedLogger struct {
	log Logger
	fmt string
}

func (s *formattedLogger) Debug(format string, vals ...interface{}) {
	s.log.Debug(fmt.Sprintf("%v: %v", s.fmt, format), vals...)
}

func (s *formattedLogger) Info(format string, vals ...interface{}) {
	s.log.Info(fmt.Sprintf("%v: %v", s.fmt, format), vals...)
}

func (s *formattedLogger) Error(format string, vals ...interface{}) {
	s.log.Error(fmt.Sprintf("%v: %v", s.fmt, format), vals...)
}
