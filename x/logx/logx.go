// Package logx is a small levelled line logger for firmware and host tools.
//
// Lines look like:
//
//	[keypad] INFO asleep scans=42 drops=0
//
// Formatting avoids fmt so the same code runs on MCU builds. Values passed as
// key/value pairs support strings, integers, bools, errors, durations and
// byte slices (rendered as hex).
package logx

import (
	"io"
	"sync"
	"time"

	"keymatrix-go/x/conv"
)

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps "debug", "info", "warn", "error" to a Level. Unknown names
// yield LevelInfo.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// sink is shared by a logger and everything derived from it with With.
type sink struct {
	mu   sync.Mutex
	w    io.Writer
	min  Level
	line []byte
}

// Logger writes tagged lines. A nil *Logger discards everything.
type Logger struct {
	s   *sink
	tag string
}

// New returns a logger writing to w. A nil w selects DefaultOutput.
func New(w io.Writer, tag string, min Level) *Logger {
	if w == nil {
		w = DefaultOutput
	}
	return &Logger{s: &sink{w: w, min: min, line: make([]byte, 0, 128)}, tag: tag}
}

// With returns a logger sharing output and level but using another tag.
func (l *Logger) With(tag string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{s: l.s, tag: tag}
}

// SetLevel changes the minimum level for this logger and its relatives.
func (l *Logger) SetLevel(min Level) {
	if l == nil {
		return
	}
	l.s.mu.Lock()
	l.s.min = min
	l.s.mu.Unlock()
}

// Enabled reports whether lines at lvl would be written.
func (l *Logger) Enabled(lvl Level) bool {
	if l == nil {
		return false
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return lvl >= l.s.min
}

func (l *Logger) Debug(msg string, kv ...any) { l.log(LevelDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(LevelInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(LevelWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.log(LevelError, msg, kv) }

func (l *Logger) log(lvl Level, msg string, kv []any) {
	if l == nil {
		return
	}
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if lvl < s.min {
		return
	}
	b := s.line[:0]
	if l.tag != "" {
		b = append(b, '[')
		b = append(b, l.tag...)
		b = append(b, "] "...)
	}
	b = append(b, lvl.String()...)
	b = append(b, ' ')
	b = append(b, msg...)
	for i := 0; i < len(kv); i += 2 {
		b = append(b, ' ')
		if k, ok := kv[i].(string); ok {
			b = append(b, k...)
		} else {
			b = append(b, '?')
		}
		b = append(b, '=')
		if i+1 < len(kv) {
			b = appendValue(b, kv[i+1])
		} else {
			b = append(b, "<missing>"...)
		}
	}
	b = append(b, '\n')
	_, _ = s.w.Write(b)
	s.line = b
}

func appendValue(b []byte, v any) []byte {
	switch x := v.(type) {
	case string:
		return append(b, x...)
	case bool:
		if x {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case int:
		return conv.AppendInt(b, int64(x))
	case int32:
		return conv.AppendInt(b, int64(x))
	case int64:
		return conv.AppendInt(b, x)
	case uint:
		return conv.AppendUint(b, uint64(x))
	case uint8:
		return conv.AppendHex8(b, x)
	case uint16:
		return conv.AppendUint(b, uint64(x))
	case uint32:
		return conv.AppendUint(b, uint64(x))
	case uint64:
		return conv.AppendUint(b, x)
	case time.Duration:
		b = conv.AppendInt(b, int64(x/time.Microsecond))
		return append(b, "us"...)
	case []byte:
		b = append(b, '[')
		b = conv.AppendHexBytes(b, x)
		return append(b, ']')
	case error:
		return append(b, x.Error()...)
	case interface{ String() string }:
		return append(b, x.String()...)
	case nil:
		return append(b, "<nil>"...)
	default:
		return append(b, '?')
	}
}
