// Package logger provides structured logging for ParcelLink using zap.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/parcellink/internal/config"
)

// Logger wraps zap.SugaredLogger with trace context helpers.
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

// New creates a Logger from configuration. Diagnostics never share stdout
// with reports unless logging.output says so.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	sink, toFile, err := buildWriters(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(buildEncoder(cfg.Format, !toFile), sink, parseLevel(cfg.Level))
	base := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return wrap(base), nil
}

// NewDefault creates an info-level text Logger writing to stderr.
func NewDefault() *Logger {
	log, _ := New(&config.LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
	return log
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return wrap(zap.NewNop())
}

func wrap(base *zap.Logger) *Logger {
	return &Logger{SugaredLogger: base.Sugar(), base: base}
}

// parseLevel maps a configured level name to a zap level; anything unknown is info.
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		return zapcore.InfoLevel
	}
	return lvl
}

// buildEncoder returns a JSON encoder for "json", a console encoder otherwise.
// Console level names are colored only when writing to a terminal stream.
func buildEncoder(format string, color bool) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder

	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}

	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

// buildWriters resolves logging.output: stderr (default), stdout, or a file
// path opened for appending. toFile reports the last case.
func buildWriters(output string) (sink zapcore.WriteSyncer, toFile bool, err error) {
	switch output {
	case "stderr", "":
		return zapcore.Lock(os.Stderr), false, nil
	case "stdout":
		return zapcore.Lock(os.Stdout), false, nil
	}

	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log file %s: %w", output, err)
	}
	return zapcore.AddSync(file), true, nil
}

func (l *Logger) with(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...), base: l.base}
}

// WithRun tags entries with the trace run id.
func (l *Logger) WithRun(runID string) *Logger {
	return l.with("run", runID)
}

// WithDataset tags entries with a dataset name.
func (l *Logger) WithDataset(name string) *Logger {
	return l.with("dataset", name)
}

// WithHop tags entries with a traversal hop.
func (l *Logger) WithHop(hop int) *Logger {
	return l.with("hop", hop)
}

// WithFields returns a Logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.with(args...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
