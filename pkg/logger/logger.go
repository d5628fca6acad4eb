package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	mu           sync.RWMutex
)

func init() { // ensure we always have a usable logger even before Init is called
	globalLogger = zap.NewNop()
}

// Option customises logger construction.
type Option func(*options)

type options struct {
	filePattern  string
	maxAge       time.Duration
	rotationTime time.Duration
}

// WithRotatingFile tees log output into files named after pattern (strftime
// syntax, e.g. "./logs/memberhub.%Y%m%d.log"), rotated every rotation and
// removed after maxAge.
func WithRotatingFile(pattern string, maxAge, rotation time.Duration) Option {
	return func(o *options) {
		o.filePattern = pattern
		o.maxAge = maxAge
		o.rotationTime = rotation
	}
}

// Init configures the global logger using the provided level string.
func Init(level string, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	atomic := zap.NewAtomicLevelAt(zapLevel)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), atomic),
	}

	if o.filePattern != "" {
		writer, err := newRotatingWriter(o)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(writer), atomic))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	mu.Lock()
	defer mu.Unlock()

	globalLogger = logger
	return nil
}

func newRotatingWriter(o options) (*rotatelogs.RotateLogs, error) {
	rotateOpts := []rotatelogs.Option{}
	if o.maxAge > 0 {
		rotateOpts = append(rotateOpts, rotatelogs.WithMaxAge(o.maxAge))
	}
	if o.rotationTime > 0 {
		rotateOpts = append(rotateOpts, rotatelogs.WithRotationTime(o.rotationTime))
	}

	writer, err := rotatelogs.New(o.filePattern, rotateOpts...)
	if err != nil {
		return nil, fmt.Errorf("logger: open rotating file: %w", err)
	}
	return writer, nil
}

// Logger returns the configured global logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return globalLogger
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) (restore func()) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	prev := globalLogger
	globalLogger = l
	mu.Unlock()

	return func() {
		mu.Lock()
		globalLogger = prev
		mu.Unlock()
	}
}

// Sync flushes buffered log entries.
func Sync() error {
	return Logger().Sync()
}

// WithModule returns a child logger annotated with the module name.
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}

// Info logs an informational message using the global logger.
func Info(msg string, fields ...zap.Field) {
	Logger().Info(msg, fields...)
}

// Error logs an error message using the global logger.
func Error(msg string, fields ...zap.Field) {
	Logger().Error(msg, fields...)
}

// Warn logs a warning message using the global logger.
func Warn(msg string, fields ...zap.Field) {
	Logger().Warn(msg, fields...)
}

// Debug logs a debug message using the global logger.
func Debug(msg string, fields ...zap.Field) {
	Logger().Debug(msg, fields...)
}
