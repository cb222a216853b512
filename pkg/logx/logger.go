package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log record.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Fields is free-form structured context attached to a record.
type Fields map[string]interface{}

// record is a single log event handed to a formatter.
type record struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  Fields
}

// Formatter renders a record to bytes, newline included.
type Formatter interface {
	Format(r *record) []byte
}

// ConsoleFormatter renders human-readable single-line output.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Format(r *record) []byte {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(r.Level.String())
	b.WriteString("] ")
	b.WriteString(r.Message)

	if len(r.Fields) > 0 {
		keys := make([]string, 0, len(r.Fields))
		for k := range r.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, r.Fields[k])
		}
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// JSONFormatter renders one JSON object per line for log shippers.
type JSONFormatter struct{}

func (JSONFormatter) Format(r *record) []byte {
	payload := make(map[string]interface{}, len(r.Fields)+3)
	for k, v := range r.Fields {
		payload[k] = v
	}
	payload["timestamp"] = r.Time.UTC().Format(time.RFC3339Nano)
	payload["level"] = r.Level.String()
	payload["message"] = r.Message

	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"level":"ERROR","message":"logx: marshal failed: %v"}`, err))
	}
	return append(data, '\n')
}

// Logger writes leveled, structured records through a Formatter.
type Logger struct {
	mu        sync.Mutex
	level     Level
	writer    io.Writer
	formatter Formatter
	exitFunc  func(int)
}

// NewLogger creates a logger. format is "json" or "console".
func NewLogger(level Level, format string, w io.Writer) *Logger {
	var f Formatter = ConsoleFormatter{}
	if strings.EqualFold(format, "json") {
		f = JSONFormatter{}
	}
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		level:     level,
		writer:    w,
		formatter: f,
		exitFunc:  os.Exit,
	}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

func (l *Logger) log(level Level, msg string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	r := &record{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Fields:  fields,
	}
	l.writer.Write(l.formatter.Format(r))

	if level == LevelFatal {
		l.exitFunc(1)
	}
}
