package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects where and how much is logged.
type Options struct {
	// FilePath additionally appends JSON lines to this file when set.
	FilePath string
	// Level is a zerolog level name; unknown or empty means info.
	Level string
	// Console writes human readable lines to stderr instead of JSON to
	// stdout. Used by the CLI, whose stdout carries the report summary.
	Console bool
}

var (
	globalLogger zerolog.Logger
	once         sync.Once
)

// InitLogging configures the global logger. Only the first call has effect.
func InitLogging(opts Options) {
	once.Do(func() {
		var out io.Writer = os.Stdout
		if opts.Console {
			out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		}
		writers := []io.Writer{out}

		if opts.FilePath != "" {
			file, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
			if err != nil {
				// the logger is not ready yet
				os.Stderr.WriteString("Failed to open log file: " + err.Error() + "\n")
			} else {
				writers = append(writers, file)
			}
		}

		lvl, err := zerolog.ParseLevel(opts.Level)
		if err != nil || opts.Level == "" {
			lvl = zerolog.InfoLevel
		}

		globalLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(lvl).
			With().Timestamp().
			Logger()
		log.Logger = globalLogger
	})
}

// Logger returns the configured global logger.
func Logger() zerolog.Logger {
	return globalLogger
}

// WithSession tags the context logger with the dashboard session id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	l := FromContext(ctx).With().Str("session_id", sessionID).Logger()
	return l.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or the global one.
func FromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &globalLogger
	}
	return l
}

func DebugLog(ctx context.Context, msg string, args ...interface{}) {
	FromContext(ctx).Debug().Msgf(msg, args...)
}

func InfoLog(ctx context.Context, msg string, args ...interface{}) {
	FromContext(ctx).Info().Msgf(msg, args...)
}

func WarnLog(ctx context.Context, msg string, args ...interface{}) {
	FromContext(ctx).Warn().Msgf(msg, args...)
}

// ErrorLog logs msg at error level. A leading error argument (nil
// included) is attached as the structured "error" field instead of being
// formatted into msg.
func ErrorLog(ctx context.Context, msg string, args ...interface{}) {
	event := FromContext(ctx).Error()
	if len(args) > 0 {
		if err, ok := args[0].(error); ok || args[0] == nil {
			event = event.Err(err)
			args = args[1:]
		}
	}
	if len(args) == 0 {
		event.Msg(msg)
		return
	}
	event.Msgf(msg, args...)
}
