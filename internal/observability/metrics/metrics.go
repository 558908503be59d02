package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	servicesCreated   metric.Int64Counter
	allocationRetries metric.Int64Counter
	allocatorFailures metric.Int64Counter
	reportsGenerated  metric.Int64Counter
	reportDuration    metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "sevadesk"
	}
	meter := provider.Meter(name)

	servicesCreated, err := meter.Int64Counter("sevadesk_services_created_total")
	if err != nil {
		return nil, err
	}
	allocationRetries, err := meter.Int64Counter("sevadesk_invoice_allocation_retries_total")
	if err != nil {
		return nil, err
	}
	allocatorFailures, err := meter.Int64Counter("sevadesk_invoice_allocation_failures_total")
	if err != nil {
		return nil, err
	}
	reportsGenerated, err := meter.Int64Counter("sevadesk_reports_generated_total")
	if err != nil {
		return nil, err
	}
	reportDuration, err := meter.Float64Histogram("sevadesk_report_duration_ms")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		servicesCreated:   servicesCreated,
		allocationRetries: allocationRetries,
		allocatorFailures: allocatorFailures,
		reportsGenerated:  reportsGenerated,
		reportDuration:    reportDuration,
	}, nil
}

// RecordServiceCreated counts a persisted service record by invoice kind.
func (m *Metrics) RecordServiceCreated(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("kind", strings.TrimSpace(kind)))
	m.servicesCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAllocationRetry counts a retried insert after a duplicate invoice id.
func (m *Metrics) RecordAllocationRetry(ctx context.Context, prefix string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("prefix", strings.TrimSpace(prefix)))
	m.allocationRetries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAllocationFailure counts allocator failures by reason.
func (m *Metrics) RecordAllocationFailure(ctx context.Context, prefix, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("prefix", strings.TrimSpace(prefix)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.allocatorFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReport records one monthly report run.
func (m *Metrics) RecordReport(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.reportsGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.reportDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"kind":        {},
	"prefix":      {},
	"reason":      {},
	"outcome":     {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
