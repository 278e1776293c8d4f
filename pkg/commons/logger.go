// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package commons

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface shared by every package in the service.
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

	// Benchmark logs how long an operation took since start.
	Benchmark(operation string, start time.Time)

	Sync() error
}

type applicationLogger struct {
	*zap.SugaredLogger
}

type loggerOptions struct {
	name       string
	level      string
	path       string
	production bool
}

type LoggerOption func(*loggerOptions)

func Name(name string) LoggerOption {
	return func(o *loggerOptions) { o.name = name }
}

func Level(level string) LoggerOption {
	return func(o *loggerOptions) { o.level = level }
}

// Path enables rotating file output in addition to stdout.
func Path(path string) LoggerOption {
	return func(o *loggerOptions) { o.path = path }
}

func EnableProduction() LoggerOption {
	return func(o *loggerOptions) { o.production = true }
}

func NewApplicationLogger(opts ...LoggerOption) (Logger, error) {
	lo := loggerOptions{
		name:  "campaign",
		level: "debug",
	}
	for _, opt := range opts {
		opt(&lo)
	}

	level, err := zapcore.ParseLevel(strings.ToLower(lo.level))
	if err != nil {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoder := zapcore.NewConsoleEncoder(encoderCfg)
	if lo.production {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}
	if lo.path != "" {
		rotator := &lumberjack.Logger{
			Filename:   lo.path,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), level))
	}

	zl := zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named(lo.name)
	return &applicationLogger{SugaredLogger: zl.Sugar()}, nil
}

// NewNopLogger discards everything; used by tests that do not assert on logs.
func NewNopLogger() Logger {
	return &applicationLogger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *applicationLogger) Benchmark(operation string, start time.Time) {
	l.SugaredLogger.Debugw("benchmark",
		"operation", operation,
		"took", time.Since(start).String(),
	)
}
