package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsHighCardinalityKeys(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("kind", "TICKET"),
		attribute.String("invoice_id", "TA0001"),
		attribute.String("devotee_name", "Ravi"),
		attribute.String("reason", "exhausted"),
	)

	keys := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		keys = append(keys, string(attr.Key))
	}
	assert.Equal(t, []string{"kind", "reason"}, keys)
}

func TestMetricsRecordWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "sevadesk-test"}, noop.NewMeterProvider())
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordServiceCreated(ctx, "TICKET")
		m.RecordAllocationRetry(ctx, "T")
		m.RecordAllocationFailure(ctx, "R", "exhausted")
		m.RecordReport(ctx, "success", 40*time.Millisecond)
	})

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordServiceCreated(ctx, "RECEIPT") })
}
