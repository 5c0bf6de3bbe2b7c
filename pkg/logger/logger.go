// Package logger builds the zap loggers used across ragchat.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a logger writing to stdout. format "json" selects the JSON
// encoder for log shippers; anything else gets the colored console encoder.
func NewLogger(debug bool, format string) *zap.Logger {
	return NewLoggerTo(os.Stdout, debug, format)
}

// NewLoggerTo is NewLogger writing to w. Commands that speak a protocol on
// stdout log to stderr instead.
func NewLoggerTo(w io.Writer, debug bool, format string) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller())
}
