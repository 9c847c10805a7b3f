package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config controls the connector's root logger. Zero values fall back to the
// connector defaults: info-level JSON on stdout.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or a file path
	TimeFormat string // layout for the time field
}

func (c *Config) withDefaults() Config {
	resolved := *c
	if resolved.Level == "" {
		resolved.Level = "info"
	}
	if resolved.Format == "" {
		resolved.Format = "json"
	}
	if resolved.Output == "" {
		resolved.Output = "stdout"
	}
	if resolved.TimeFormat == "" {
		resolved.TimeFormat = defaultTimeFormat
	}
	return resolved
}

// New builds the root zap logger every connector component hangs off.
// File outputs are opened in append mode; an unopenable path is an error
// rather than a silent fallback, since losing the audit trail of ERP calls
// defeats the point of persisting it.
func New(cfg *Config) (*zap.Logger, error) {
	resolved := cfg.withDefaults()

	sink, err := openSink(resolved.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(resolved), sink, parseLevel(resolved.Level))
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(cfg Config) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(cfg.TimeFormat),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		return zapcore.AddSync(file), nil
	}
}

// Sync flushes buffered entries. Best effort: stdout refuses to sync on some
// platforms, callers typically discard the error at shutdown.
func Sync(logger *zap.Logger) error {
	return logger.Sync()
}
