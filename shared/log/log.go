package log

import (
	"context"
	"github.com/hyperdxio/opentelemetry-go/otelzap"
	"github.com/hyperdxio/opentelemetry-logs-go/exporters/otlp/otlplogs"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"os"
)

// InitLogger writes to stdout and, with exportOTLP set, also ships records
// through the OTLP log exporter configured by the standard OTEL_* variables.
func InitLogger(ctx context.Context, level string, exportOTLP bool) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zap.DebugLevel
	}

	consoleDebugging := zapcore.Lock(os.Stdout)
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, consoleDebugging, lvl)}

	if exportOTLP {
		logExporter, err := otlplogs.NewExporter(ctx)
		if err == nil {
			loggerProvider := sdk.NewLoggerProvider(
				sdk.WithBatcher(logExporter),
			)
			cores = append(cores, otelzap.NewOtelCore(loggerProvider))
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}

func LoggerWithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}
