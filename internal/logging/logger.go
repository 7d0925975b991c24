// Package logging builds the zap logger shared by the bot components.
package logging

import (
	"strconv"

	"go.uber.org/zap"
)

// NewLogger builds a JSON production logger, or a console logger at debug
// level when debug is set.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	return cfg.Build()
}

// WithOperation enriches the logger with an operation name and tick number.
// A zero tick is omitted.
func WithOperation(logger *zap.Logger, operation string, tick uint64) *zap.Logger {
	fields := []zap.Field{zap.String("operation", operation)}
	if tick != 0 {
		fields = append(fields, zap.Uint64("tick", tick))
	}
	return logger.With(fields...)
}

// TickID formats a tick number for OperationError.
func TickID(tick uint64) string {
	return strconv.FormatUint(tick, 10)
}
