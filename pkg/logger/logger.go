package logger

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	ServiceName string
	// IsInternal routes log records to the process-global OTel logger
	// provider in addition to stdout, for runs inside instrumented infra.
	IsInternal    bool
	IsDebug       bool
	InitialFields []zap.Field

	Cores []zapcore.Core
}

func New(ctx context.Context, config Config) (*zap.Logger, error) {
	var level zap.AtomicLevel
	if config.IsDebug {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zapConfig := zap.Config{
		Level:         level,
		Encoding:      "json",
		EncoderConfig: encoderConfig(zapcore.DefaultLineEnding),
		OutputPaths: []string{
			"stdout",
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
	}

	cores := make([]zapcore.Core, 0)

	if config.IsInternal {
		provider := global.GetLoggerProvider()
		cores = append(cores,
			otelzap.NewCore(config.ServiceName, otelzap.WithLoggerProvider(provider)),
		)
	}

	cores = append(cores, config.Cores...)

	logger, err := zapConfig.Build(
		zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			cores = append(cores, c)

			return zapcore.NewTee(cores...)
		}),
		zap.Fields(
			zap.String("service", config.ServiceName),
			zap.Int("pid", os.Getpid()),
		),
		zap.Fields(config.InitialFields...),
	)
	if err != nil {
		return nil, fmt.Errorf("error building logger: %w", err)
	}

	return logger, nil
}

func encoderConfig(lineEnding string) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "timestamp",
		MessageKey:    "message",
		LevelKey:      "level",
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		NameKey:       "logger",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.RFC3339TimeEncoder,
		LineEnding:    lineEnding,
	}
}
