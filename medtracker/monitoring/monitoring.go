// Package monitoring exports OpenCensus metrics and OpenTelemetry traces to
// Google Cloud.
package monitoring

import (
	"context"
	"fmt"
	"time"

	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Options struct {
	// Project overrides the project used for monitoring.  If empty, the
	// project associated with Application Default Credentials is used.
	Project string

	// MetricPrefix is prepended to every exported metric name.
	MetricPrefix string

	// TraceRatio is the fraction of traces that are exported.
	TraceRatio float64
}

// Install starts the metric and trace exporters.  The returned function
// flushes and stops them.
func Install(ctx context.Context, opts Options) (func(), error) {
	metricsExporter, err := stackdriver.NewExporter(stackdriver.Options{
		ProjectID:         opts.Project,
		MetricPrefix:      opts.MetricPrefix,
		ReportingInterval: 60 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("while creating Stackdriver metrics exporter: %w", err)
	}
	if err := metricsExporter.StartMetricsExporter(); err != nil {
		return nil, fmt.Errorf("while starting Stackdriver metrics exporter: %w", err)
	}

	traceOpts := []cloudtrace.Option{}
	if opts.Project != "" {
		traceOpts = append(traceOpts, cloudtrace.WithProjectID(opts.Project))
	}
	traceExporter, err := cloudtrace.New(traceOpts...)
	if err != nil {
		metricsExporter.StopMetricsExporter()
		return nil, fmt.Errorf("while creating Cloud Trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(opts.TraceRatio)),
	)
	otel.SetTracerProvider(tp)

	return func() {
		metricsExporter.Flush()
		metricsExporter.StopMetricsExporter()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		tp.Shutdown(ctx)
	}, nil
}
