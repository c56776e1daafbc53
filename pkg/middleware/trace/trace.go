package trace

import (
	"context"
	"time"

	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

type InitConfig struct {
	ServiceName    string
	Version        string
	Env            string
	Exporter       string
	TraceEndpoint  string
	MetricEndpoint string
	Insecure       bool
}

var (
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
)

func InitTrace(ctx context.Context, conf *InitConfig) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if conf.Exporter == "" || conf.Exporter == ExporterNone {
		logger.Infof(ctx, "trace exporter disabled")
		return
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", conf.ServiceName),
		attribute.String("service.version", conf.Version),
		attribute.String("deployment.environment", conf.Env),
	)

	spanExporter, err := newSpanExporter(ctx, conf)
	if err != nil {
		logger.Errorf(ctx, "init span exporter err: %+v", err)
		return
	}
	metricExporter, err := newMetricExporter(ctx, conf)
	if err != nil {
		logger.Errorf(ctx, "init metric exporter err: %+v", err)
		return
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		logger.Warnf(ctx, "start runtime metrics err: %+v", err)
	}
	if err := host.Start(host.WithMeterProvider(meterProvider)); err != nil {
		logger.Warnf(ctx, "start host metrics err: %+v", err)
	}
}

func newSpanExporter(ctx context.Context, conf *InitConfig) (sdktrace.SpanExporter, error) {
	if conf.Exporter == ExporterStdout {
		return stdouttrace.New()
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(conf.TraceEndpoint)}
	if conf.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
}

func newMetricExporter(ctx context.Context, conf *InitConfig) (sdkmetric.Exporter, error) {
	if conf.Exporter == ExporterStdout {
		return stdoutmetric.New()
	}

	endpoint := conf.MetricEndpoint
	if endpoint == "" {
		endpoint = conf.TraceEndpoint
	}
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(endpoint)}
	if conf.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	return otlpmetricgrpc.New(ctx, opts...)
}

func CloseTrace() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Errorf(ctx, "shutdown tracer provider err: %+v", err)
		}
	}
	if meterProvider != nil {
		if err := meterProvider.Shutdown(ctx); err != nil {
			logger.Errorf(ctx, "shutdown meter provider err: %+v", err)
		}
	}
}
