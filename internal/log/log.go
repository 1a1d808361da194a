package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

const consoleTimeFormat = "2006-01-02 15:04:05"

// errorKey is the field name of the error passed to Error.
const errorKey = "err"

// Logger is a leveled key/value logger. It is a value type and is passed
// explicitly into components; the zero value discards everything.
type Logger struct {
	zl     zerolog.Logger
	active bool
}

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level Level) Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	zl := zerolog.New(cw).Level(level.zerolog()).With().Timestamp().Logger()
	return Logger{zl: zl, active: true}
}

// NewStderr returns a console logger on stderr, at DEBUG when debug is set
// and INFO otherwise.
func NewStderr(debug bool) Logger {
	level := LevelInfo
	if debug {
		level = LevelDebug
	}
	return New(os.Stderr, level)
}

// Nop returns a logger that never writes anything.
func Nop() Logger {
	return Logger{zl: zerolog.Nop(), active: true}
}

// ParseLevel maps "debug", "info", "warn", "error" (any case) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// With returns a derived logger that adds kv to every line.
func (l Logger) With(kv ...any) Logger {
	if !l.active {
		return l
	}
	ctx := l.zl.With()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, kv[i+1])
	}
	return Logger{zl: ctx.Logger(), active: true}
}

// DebugEnabled reports whether Debug lines are written.
func (l Logger) DebugEnabled() bool {
	return l.active && l.zl.GetLevel() <= zerolog.DebugLevel
}

func (l Logger) Debug(msg string, kv ...any) {
	l.write(zerolog.DebugLevel, nil, msg, kv)
}

func (l Logger) Info(msg string, kv ...any) {
	l.write(zerolog.InfoLevel, nil, msg, kv)
}

func (l Logger) Warn(msg string, kv ...any) {
	l.write(zerolog.WarnLevel, nil, msg, kv)
}

func (l Logger) Error(msg string, err error, kv ...any) {
	l.write(zerolog.ErrorLevel, err, msg, kv)
}

func (l Logger) write(level zerolog.Level, err error, msg string, kv []any) {
	if !l.active {
		return
	}
	e := l.zl.WithLevel(level)
	if e == nil {
		return
	}
	if err != nil {
		e = e.AnErr(errorKey, err)
	}
	// Expect kv as pairs: key, value, key, value, ...
	// If odd number of args, last one is ignored.
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
