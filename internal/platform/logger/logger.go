package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON structured logger writing to w. Pass nil to default to
// stdout, which is what main does in production.
func New(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
