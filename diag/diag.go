// Package diag provides a verbosity-gated diagnostic sink used in place of
// bare fmt.Fprintln(os.Stderr, ...) calls throughout header and record
// parsing. Levels follow the five-step policy from SPEC_FULL.md §6: 1
// error, 2 warning, 3 message, 4 progress, 5 debug.
//
// ref: SPEC_FULL.md §4.6
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Level is a verbosity threshold or message severity, 1 (quietest) through
// 5 (most verbose).
type Level int

// The five verbosity levels.
const (
	LevelError Level = iota + 1
	LevelWarning
	LevelMessage
	LevelProgress
	LevelDebug
)

// Logger writes leveled diagnostics to w, suppressing anything above its
// configured verbosity. Each level is rendered through its own
// color.Color, matching the color.New(...).EnableColor().SprintFunc()
// idiom used for kr's terminal output.
type Logger struct {
	w       io.Writer
	level   Level
	colors  [LevelDebug + 1]*color.Color
}

// New returns a Logger that writes to w, reporting diagnostics up to and
// including level.
func New(w io.Writer, level Level) *Logger {
	l := &Logger{w: w, level: level}
	l.colors[LevelError] = color.New(color.FgHiRed)
	l.colors[LevelWarning] = color.New(color.FgHiYellow)
	l.colors[LevelMessage] = color.New(color.FgHiCyan)
	l.colors[LevelProgress] = color.New(color.FgHiGreen)
	l.colors[LevelDebug] = color.New(color.FgHiMagenta)
	for _, c := range l.colors {
		if c != nil {
			c.EnableColor()
		}
	}
	return l
}

// Discard returns a Logger that reports nothing, for callers (tests, a
// library consumer that wants silence) that don't want diagnostics on
// stderr.
func Discard() *Logger {
	return New(io.Discard, 0)
}

// Default returns a Logger writing to os.Stderr at LevelWarning, the
// threshold used when a caller constructs a Header or record.Parser
// without an explicit Logger.
func Default() *Logger {
	return New(os.Stderr, LevelWarning)
}

func (l *Logger) log(level Level, prefix, format string, args ...interface{}) {
	if l == nil || level > l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c := l.colors[level]
	line := prefix + ": " + msg
	if c != nil {
		line = c.SprintFunc()(line)
	}
	fmt.Fprintln(l.w, line)
}

// Errorf reports a level-1 diagnostic: a fatal condition the caller is
// about to turn into a returned error.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, "error", format, args...)
}

// Warnf reports a level-2 diagnostic: a field or record was dropped but
// processing continues.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarning, "warning", format, args...)
}

// Messagef reports a level-3 diagnostic: routine, user-facing information.
func (l *Logger) Messagef(format string, args ...interface{}) {
	l.log(LevelMessage, "message", format, args...)
}

// Progressf reports a level-4 diagnostic: coarse progress (e.g. "record
// 10000 parsed").
func (l *Logger) Progressf(format string, args ...interface{}) {
	l.log(LevelProgress, "progress", format, args...)
}

// Debugf reports a level-5 diagnostic: internal detail useful when
// diagnosing the codec itself.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, "debug", format, args...)
}

// Level reports the logger's configured verbosity threshold.
func (l *Logger) Level() Level {
	if l == nil {
		return 0
	}
	return l.level
}
