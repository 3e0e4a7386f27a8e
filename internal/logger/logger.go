package logger

import (
	"log/slog"
	"os"
)

func InitLogger(level slog.Level) {
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	slog.SetDefault(slog.New(jsonHandler))
}
