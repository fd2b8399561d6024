// Package logger wraps zerolog for the relay services.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level mirrors zerolog levels.
type Level int8

const (
	TraceLevel Level = iota - 1
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	PanicLevel
	NoLevel
	Disabled
)

// Context fields the relay attaches to its log lines.
const (
	CodeField = "code"
	RoleField = "role"
	ConnField = "cid"
	tagField  = "s"
)

var pid = os.Getpid()

type Logger struct {
	logger *zerolog.Logger
}

// Build picks the JSON or the console logger.
func Build(debug, console bool, tag string) *Logger {
	if console {
		return NewConsole(debug, tag, false)
	}
	return New(debug)
}

// New creates a JSON logger writing to stderr.
func New(isDebug bool) *Logger {
	zerolog.SetGlobalLevel(level(isDebug))
	logger := zerolog.New(os.Stderr).With().Timestamp().Int("pid", pid).Logger()
	return &Logger{logger: &logger}
}

// NewConsole creates a human-readable logger on stdout where the session
// code and role go to fixed columns in front of the message.
func NewConsole(isDebug bool, tag string, noColor bool) *Logger {
	zerolog.SetGlobalLevel(level(isDebug))
	zerolog.TimeFieldFormat = time.RFC3339Nano
	output := zerolog.ConsoleWriter{
		Out:           os.Stdout,
		TimeFormat:    "15:04:05.0000",
		NoColor:       noColor,
		PartsOrder:    []string{zerolog.TimestampFieldName, "pid", zerolog.LevelFieldName, tagField, CodeField, RoleField, zerolog.MessageFieldName},
		FieldsExclude: []string{tagField, "pid", CodeField, RoleField},
	}
	if noColor {
		output.FormatMessage = func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		}
	}
	logger := zerolog.New(output).With().
		Str("pid", fmt.Sprintf("%4x", pid)).
		Str(tagField, tag).
		Timestamp().Logger()
	return &Logger{logger: &logger}
}

// NewWriter creates a JSON logger on w with its own level, leaving the
// global level alone. Handy in tests.
func NewWriter(w io.Writer, lvl Level) *Logger {
	logger := zerolog.New(w).Level(zerolog.Level(lvl)).With().Timestamp().Logger()
	return &Logger{logger: &logger}
}

func Default() *Logger { return &Logger{logger: &log.Logger} }

func level(isDebug bool) zerolog.Level {
	if isDebug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// GetLevel returns the current Level of l.
func (l *Logger) GetLevel() Level { return Level(l.logger.GetLevel()) }

// With creates a child logger with the field added to its context.
func (l *Logger) With() zerolog.Context { return l.logger.With() }

// Extend adds some additional context to the existing logger.
func (l *Logger) Extend(ctx zerolog.Context) *Logger {
	logger := ctx.Logger()
	return &Logger{logger: &logger}
}

// ForSession returns a child logger tagged with a session code, a role
// and a connection id. Empty values are left out.
func (l *Logger) ForSession(code, role, conn string) *Logger {
	ctx := l.logger.With().Str(CodeField, code)
	if role != "" {
		ctx = ctx.Str(RoleField, role)
	}
	if conn != "" {
		ctx = ctx.Str(ConnField, conn)
	}
	return l.Extend(ctx)
}

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }

// Fatal starts a new message with fatal level. The os.Exit(1) function
// is called by the Msg method.
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }
