package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog zerolog.Logger

// InitStructured initializes the structured zerolog logger.
// The console is an interactive program, so logs go to stderr
// and stdout stays free for the operator UI.
func InitStructured(env string) {
	var w io.Writer

	if env == "development" || env == "dev" {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	} else {
		// JSON output for production (machine-readable)
		w = os.Stderr
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "bluecool-admin").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithComponent returns a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return zlog.With().Str("component", component).Logger()
}

// WithPostID returns a logger with a post_id field
func WithPostID(postID string) zerolog.Logger {
	return zlog.With().Str("post_id", postID).Logger()
}
