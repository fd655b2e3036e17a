package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every production log entry
const ServiceName = "inventory-api"

func encoderConfig(env string) zapcore.EncoderConfig {
	if env != "production" {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// NewWithWriter builds the logger for env on top of an arbitrary sink.
// Production logs are JSON at info level, everything else is console at debug.
func NewWithWriter(env string, ws zapcore.WriteSyncer) *zap.Logger {
	level := zapcore.DebugLevel
	encoder := zapcore.NewConsoleEncoder(encoderConfig(env))
	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	}

	if env == "production" {
		level = zapcore.InfoLevel
		encoder = zapcore.NewJSONEncoder(encoderConfig(env))
		opts = append(opts, zap.Fields(zap.String("service", ServiceName)))
	} else {
		opts = append(opts, zap.Development())
	}

	return zap.New(zapcore.NewCore(encoder, ws, level), opts...)
}

// New creates a new structured logger writing to stdout
func New(env string) (*zap.Logger, error) {
	// Always log to stdout for container compatibility
	return NewWithWriter(env, zapcore.Lock(os.Stdout)), nil
}
