// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package commons

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging contract shared by every component of the relay.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})

	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Benchmark logs how long a named operation took.
	Benchmark(functionName string, duration time.Duration)
	Sync() error
}

type applicationLogger struct {
	*zap.SugaredLogger
}

type loggerOptions struct {
	name       string
	path       string
	level      string
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	fileOutput bool
}

// LoggerOption mutates logger construction options.
type LoggerOption func(*loggerOptions)

func Name(name string) LoggerOption {
	return func(o *loggerOptions) { o.name = name }
}

// Path enables file output under the given directory.
func Path(path string) LoggerOption {
	return func(o *loggerOptions) {
		o.path = path
		o.fileOutput = path != ""
	}
}

func Level(level string) LoggerOption {
	return func(o *loggerOptions) { o.level = level }
}

func MaxSize(mb int) LoggerOption {
	return func(o *loggerOptions) { o.maxSizeMB = mb }
}

// NewApplicationLogger builds a zap backed logger. Without options it logs at
// debug level to stdout only.
func NewApplicationLogger(opts ...LoggerOption) (Logger, error) {
	o := &loggerOptions{
		name:       "relay",
		level:      "debug",
		maxSizeMB:  100,
		maxBackups: 5,
		maxAgeDays: 14,
	}
	for _, opt := range opts {
		opt(o)
	}

	level, err := zapcore.ParseLevel(o.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", o.level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level),
	}
	if o.fileOutput {
		writer := &lumberjack.Logger{
			Filename:   filepath.Join(o.path, o.name+".log"),
			MaxSize:    o.maxSizeMB,
			MaxBackups: o.maxBackups,
			MaxAge:     o.maxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).
		Named(o.name)
	return &applicationLogger{SugaredLogger: logger.Sugar()}, nil
}

func (l *applicationLogger) Benchmark(functionName string, duration time.Duration) {
	l.SugaredLogger.Debugw("benchmark", "function", functionName, "duration_ms", duration.Milliseconds())
}
