// Package telemetry installs the process-wide OpenTelemetry providers that
// back every package's slog logger and tracer.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Options struct {
	ServiceName string
	// Writer receives exported records. Standard output when nil.
	Writer io.Writer
	// Traces enables the stdout span exporter.
	Traces bool
}

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(context.Context) error

func Setup(opts Options) (ShutdownFunc, error) {
	res := resource.NewSchemaless(attribute.String("service.name", opts.ServiceName))

	var logOpts []stdoutlog.Option
	if opts.Writer != nil {
		logOpts = append(logOpts, stdoutlog.WithWriter(opts.Writer))
	}
	logExporter, err := stdoutlog.New(logOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)
	global.SetLoggerProvider(loggerProvider)

	shutdowns := []ShutdownFunc{loggerProvider.Shutdown}

	if opts.Traces {
		traceOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if opts.Writer != nil {
			traceOpts = append(traceOpts, stdouttrace.WithWriter(opts.Writer))
		}
		traceExporter, err := stdouttrace.New(traceOpts...)
		if err != nil {
			_ = loggerProvider.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tracerProvider := sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(traceExporter),
		)
		otel.SetTracerProvider(tracerProvider)
		shutdowns = append(shutdowns, tracerProvider.Shutdown)
	}

	return func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}, nil
}
