package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

type Config struct {
	Level   string     `yaml:"level" json:"level"`
	Console bool       `yaml:"console" json:"console"`
	File    FileConfig `yaml:"file" json:"file"`
}

type FileConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// New builds the root logger from config: a console writer, an optional file
// sink, or both. The returned closer owns the file handle; it is safe to call
// when no file sink is configured.
func New(cfg Config) (zerolog.Logger, func() error) {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = consoleTimeFormat
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level, zerolog.InfoLevel))

	closer := func() error { return nil }

	writers := make([]io.Writer, 0, 2)
	if cfg.Console {
		writers = append(writers, consoleWriter())
	}
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = "./eisendo.log"
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			// Fall back to console only; the server should not die over a log file.
			warnLogger := NewConsole("warn")
			warnLogger.Warn().Err(err).Str("path", path).Msg("log file not opened")
		} else {
			writers = append(writers, zerolog.SyncWriter(f))
			closer = f.Close
		}
	}
	if len(writers) == 0 {
		writers = append(writers, consoleWriter())
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return logger, closer
}

// NewConsole is the bootstrap logger used before config is loaded.
func NewConsole(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = consoleTimeFormat
	return zerolog.New(consoleWriter()).
		Level(ParseLevel(level, zerolog.InfoLevel)).
		With().Timestamp().Logger()
}

// SetLevel swaps the global level at runtime; the config watcher calls this
// on reload.
func SetLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level, zerolog.InfoLevel))
}

func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return def
	}
}

func consoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: consoleTimeFormat}
}
