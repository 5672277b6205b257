package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Production gets JSON output,
// everything else the development console encoder.
func NewLogger(environment, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		cfg.DisableStacktrace = true
	}

	return cfg.Build()
}

// BusLogger adapts a zap logger to the key/value logger the buses expect
type BusLogger struct {
	sugar *zap.SugaredLogger
}

// NewBusLogger creates a new bus logger
func NewBusLogger(logger *zap.Logger) *BusLogger {
	return &BusLogger{sugar: logger.Sugar()}
}

// Info logs at info level
func (l *BusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Error logs at error level
func (l *BusLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
