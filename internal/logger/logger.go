package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats accepted by New
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ServiceName is attached to every production log entry
const ServiceName = "profile-sync"

// New builds the logger for LOG_FORMAT. An empty format means JSON.
func New(format string, debugMode bool) (*zap.Logger, error) {
	switch format {
	case "", FormatJSON:
		return NewProductionLogger(debugMode)
	case FormatConsole:
		return NewDevelopmentLogger(debugMode)
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatJSON, FormatConsole)
	}
}

// NewProductionLogger writes JSON entries with ISO8601 timestamps and a
// service field
func NewProductionLogger(debugMode bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = levelFor(debugMode)
	cfg.Encoding = FormatJSON
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
	cfg.EncoderConfig.FunctionKey = zapcore.OmitKey
	cfg.InitialFields = map[string]any{"service": ServiceName}

	return cfg.Build()
}

// NewDevelopmentLogger writes colourless console output for local runs and the CLI
func NewDevelopmentLogger(debugMode bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = levelFor(debugMode)
	cfg.DisableStacktrace = !debugMode

	return cfg.Build()
}

// Sync flushes buffered entries; call it before exit. A nil logger is a no-op.
func Sync(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	return logger.Sync()
}

func levelFor(debugMode bool) zap.AtomicLevel {
	if debugMode {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel)
}
