// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where and how verbosely to log.
type Options struct {
	Verbose bool
	// Path appends logs to a file instead of Stderr.
	Path   string
	Stderr io.Writer
}

// New returns a console logger and a func that flushes and closes it.
func New(opts Options) (*zap.Logger, func() error, error) {
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	var (
		sink    zapcore.WriteSyncer
		closeFn = func() error { return nil }
	)
	switch {
	case opts.Path != "":
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		sink = zapcore.AddSync(file)
		closeFn = file.Close
	case opts.Stderr != nil:
		sink = zapcore.AddSync(opts.Stderr)
	default:
		sink = zapcore.Lock(os.Stderr)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, zap.NewAtomicLevelAt(level))

	logger := zap.New(core, zap.AddCaller(), zap.ErrorOutput(sink))
	return logger, func() error {
		_ = logger.Sync()
		return closeFn()
	}, nil
}
