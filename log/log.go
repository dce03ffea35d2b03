// Package log builds the zap loggers used across szopper components.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ConsoleEncoder = "console"
	JSONEncoder    = "json"
)

// Config for the application logger.
type Config struct {
	Level   string `mapstructure:"level"`
	Encoder string `mapstructure:"encoder"`
}

// DefaultConfig returns console logging at info level.
func DefaultConfig() Config {
	return Config{
		Level:   zapcore.InfoLevel.String(),
		Encoder: ConsoleEncoder,
	}
}

// where logs go by default.
var logWriter io.Writer = os.Stdout

// New creates a named logger writing to stdout with the level and encoder from cfg.
func New(name string, cfg Config) (*zap.Logger, error) {
	return newWithWriter(name, cfg, logWriter)
}

func newWithWriter(name string, cfg Config, w io.Writer, hooks ...func(zapcore.Entry) error) (*zap.Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	enc, err := encoder(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return zap.New(zapcore.RegisterHooks(core, hooks...)).Named(name), nil
}

// ParseLevel parses a textual level, empty string means info.
func ParseLevel(text string) (zapcore.Level, error) {
	if text == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(text))); err != nil {
		return lvl, fmt.Errorf("parse log level %q: %w", text, err)
	}
	return lvl, nil
}

func encoder(name string) (zapcore.Encoder, error) {
	switch name {
	case ConsoleEncoder, "":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg), nil
	case JSONEncoder:
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	default:
		return nil, fmt.Errorf("unknown log encoder %q", name)
	}
}
