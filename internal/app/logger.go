package app

import (
	"io"
	"os"

	"fastfeet/internal/logx"
)

var exit = os.Exit

// NewLogger writes JSON lines to w at the given level.
func NewLogger(w io.Writer, level string) logx.Logger {
	return logx.NewJSON(w, level)
}

// fatal is used before a configured logger exists.
func fatal(msg string, err error) {
	NewLogger(os.Stderr, "error").Error(msg, logx.Err(err))
	exit(1)
}
