package logx

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Logger writes through whatever zerolog logger its source returns at call
// time, so loggers derived from a Service follow Service.Apply. The zero
// value discards everything.
type Logger struct {
	src    func() *zerolog.Logger
	fields []Field
}

var nop = zerolog.Nop()

// Nop discards everything but, unlike the zero value, is not IsZero.
func Nop() Logger {
	return Logger{src: func() *zerolog.Logger { return &nop }}
}

// NewWriter is a standalone console logger on w, used by the CLI.
func NewWriter(w io.Writer, level string) Logger {
	setGlobals()
	lvl, _ := parseLevel(level)
	zl := zerolog.New(consoleWriter(w)).Level(lvl).With().Timestamp().Logger()
	return Logger{src: func() *zerolog.Logger { return &zl }}
}

func (l Logger) IsZero() bool { return l.src == nil && len(l.fields) == 0 }

// With returns a copy carrying fields on every event.
func (l Logger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	out := l
	out.fields = make([]Field, 0, len(l.fields)+len(fields))
	out.fields = append(append(out.fields, l.fields...), fields...)
	return out
}

func (l Logger) Debug(msg string, fields ...Field) { l.emit(zerolog.DebugLevel, msg, fields) }
func (l Logger) Info(msg string, fields ...Field)  { l.emit(zerolog.InfoLevel, msg, fields) }
func (l Logger) Warn(msg string, fields ...Field)  { l.emit(zerolog.WarnLevel, msg, fields) }
func (l Logger) Error(msg string, fields ...Field) { l.emit(zerolog.ErrorLevel, msg, fields) }

func (l Logger) emit(level zerolog.Level, msg string, fields []Field) {
	if l.src == nil {
		return
	}
	zl := l.src()
	if zl == nil {
		return
	}
	e := zl.WithLevel(level)
	if e == nil {
		return
	}
	// 2 is the caller of Debug/Info/Warn/Error.
	if _, file, line, ok := runtime.Caller(2); ok {
		e.Str(zerolog.CallerFieldName, filepath.Base(file)+":"+strconv.Itoa(line))
	}
	apply(e, l.fields)
	apply(e, fields)
	e.Msg(msg)
}

func setGlobals() {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = timeFormat
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:          w,
		TimeFormat:   timeFormat,
		NoColor:      !isTerminal(w),
		FormatCaller: func(i any) string { s, _ := i.(string); return s },
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseLevel maps a config level to zerolog. Empty means info; unknown
// names fall back to info and report false.
func parseLevel(s string) (zerolog.Level, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return zerolog.InfoLevel, true
	case "warning":
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl < zerolog.TraceLevel || lvl > zerolog.ErrorLevel {
		return zerolog.InfoLevel, false
	}
	return lvl, true
}

// ValidLevel reports whether s is trace, debug, info, warn(ing), error or empty.
func ValidLevel(s string) bool {
	_, ok := parseLevel(s)
	return ok
}
