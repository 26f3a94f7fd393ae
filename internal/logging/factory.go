package logging

import (
	"fmt"
	"log/slog"
	"os"

	"go.uber.org/zap"
)

const (
	FormatSlog = "slog"
	FormatZap  = "zap"
)

// New builds the Logger selected by format. An empty format means slog.
func New(format string) (Logger, error) {
	switch format {
	case "", FormatSlog:
		return NewJSONSlogLogger(os.Stdout, slog.LevelInfo), nil
	case FormatZap:
		zl, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("zap init: %w", err)
		}
		return NewZapLogger(zl.With(zap.String("service", ServiceName))), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
