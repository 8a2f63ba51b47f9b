package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is loaded with the LOG prefix.
type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
	// Level overrides the level implied by Debug, e.g. "warn" to silence poll progress.
	Level string `split_words:"true"`
}

var DefaultConfig = &Config{}

// Output is where the global logger writes. Stdout is reserved for call reports.
var Output io.Writer = os.Stderr

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

func Init(opts ...Config) {
	conf := safe(opts...)

	writer := Output
	if conf.PrettyFormat {
		writer = zerolog.ConsoleWriter{Out: Output}
	}
	logger := zerolog.New(writer).With().Timestamp().Logger()

	if conf.Debug {
		logger = logger.With().Caller().Stack().Logger()
	}
	log.Logger = logger.Level(level(conf))
}

func level(conf *Config) zerolog.Level {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(conf.Level))); err == nil && conf.Level != "" {
		return lvl
	}
	if conf.Debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
