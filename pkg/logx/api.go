package logx

import (
	"fmt"
	"os"
)

var defaultLogger = NewLogger(ParseLevel(os.Getenv("LOG_LEVEL")), os.Getenv("LOG_FORMAT"), os.Stdout)

// SetDefaultLogger replaces the package-level logger.
func SetDefaultLogger(l *Logger) { defaultLogger = l }

// SetLevel sets the level of the package-level logger.
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil) }
func Info(msg string)  { defaultLogger.log(LevelInfo, msg, nil) }
func Warn(msg string)  { defaultLogger.log(LevelWarn, msg, nil) }
func Error(msg string) { defaultLogger.log(LevelError, msg, nil) }
func Fatal(msg string) { defaultLogger.log(LevelFatal, msg, nil) }

func Debugf(format string, args ...interface{}) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func Infof(format string, args ...interface{}) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func Warnf(format string, args ...interface{}) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func Errorf(format string, args ...interface{}) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil)
}

func Fatalf(format string, args ...interface{}) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil)
}

// Entry accumulates fields for a single record (chainable).
type Entry struct {
	logger *Logger
	fields Fields
}

// WithFields starts an entry on the default logger.
func WithFields(fields Fields) *Entry {
	e := &Entry{logger: defaultLogger, fields: make(Fields, len(fields))}
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithField starts an entry with a single field.
func WithField(key string, value interface{}) *Entry {
	return WithFields(Fields{key: value})
}

// WithError starts an entry carrying the error message.
func WithError(err error) *Entry {
	return WithFields(nil).WithError(err)
}

func (e *Entry) WithField(key string, value interface{}) *Entry {
	e.fields[key] = value
	return e
}

func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields) }
func (e *Entry) Info(msg string)  { e.logger.log(LevelInfo, msg, e.fields) }
func (e *Entry) Warn(msg string)  { e.logger.log(LevelWarn, msg, e.fields) }
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields) }

func (e *Entry) Debugf(format string, args ...interface{}) {
	e.logger.log(LevelDebug, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Infof(format string, args ...interface{}) {
	e.logger.log(LevelInfo, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Warnf(format string, args ...interface{}) {
	e.logger.log(LevelWarn, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Errorf(format string, args ...interface{}) {
	e.logger.log(LevelError, fmt.Sprintf(format, args...), e.fields)
}
