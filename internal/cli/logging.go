package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

// ValidLogFormats defines the allowed log formats.
var ValidLogFormats = []string{"text", "json", "color"}

// NewLogger creates a slog.Logger writing to w.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	case "color":
		handler = tint.NewHandler(w, &tint.Options{Level: lvl})
	default:
		return nil, fmt.Errorf("invalid log format %q: must be one of %v", format, ValidLogFormats)
	}
	return slog.New(handler), nil
}
