// Package logging builds the zap logger shelf writes to its log file.
//
// The terminal UI owns stdout, so every record goes to a JSON file that the
// activity view reads back. Components receive the logger through the context
// (see github.com/go-faster/sdk/zctx) rather than a global.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field names shared with the activity reader.
const (
	TimeKey    = "ts"
	LevelKey   = "level"
	NameKey    = "logger"
	MessageKey = "msg"
)

// New returns a JSON logger appending to path at the given level.
// An empty path discards output.
func New(path, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	if strings.TrimSpace(path) == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create log dir")
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          "json",
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{path},
		ErrorOutputPaths:  []string{path},
		DisableStacktrace: true,
	}
	lg, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = TimeKey
	ec.LevelKey = LevelKey
	ec.NameKey = NameKey
	ec.MessageKey = MessageKey
	ec.CallerKey = ""
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.LowercaseLevelEncoder
	return ec
}
