package app

import (
	"log/slog"
	"os"
)

// NewLogger returns a slog.Logger configured from the environment. Production
// emits JSON unless LOG_FORMAT says otherwise; everything else gets text.
func NewLogger(cfg *Config) *slog.Logger {
	format := "pretty"
	if cfg != nil {
		format = cfg.LogFormat
		if format == "pretty" && cfg.IsProduction() {
			format = "json"
		}
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
}
