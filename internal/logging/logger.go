package logging

import (
	"io"
	"os"
	"strings"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configura o logger global do zerolog (estruturado e rápido).
func Setup(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))

	var out io.Writer = os.Stderr
	if cfg.LogFormat != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr} // Log bonito no terminal
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "otc-desk").Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
