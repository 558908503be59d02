package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/sevadesk/internal/alert/domain"
	"github.com/smallbiznis/sevadesk/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingProvider struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (p *recordingProvider) PostMessage(_ context.Context, _ string, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message)
	return nil
}

func TestSlackNotifierThrottlesRepeats(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC))
	provider := &recordingProvider{}
	n := NewSlackNotifier(provider, "#ops", "production", clk, zap.NewNop())

	alert := domain.Alert{
		Kind:     domain.KindAllocatorExhausted,
		Severity: domain.SeverityCritical,
		Key:      "T",
		Summary:  "TOKEN identifiers exhausted",
	}
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, alert))
	require.NoError(t, n.Notify(ctx, alert))
	assert.Len(t, provider.messages, 1)
	assert.Contains(t, provider.messages[0], "[CRITICAL] TOKEN identifiers exhausted (production)")
	assert.Contains(t, provider.messages[0], "2024-03-03T09:00:00Z")

	other := alert
	other.Key = "R"
	require.NoError(t, n.Notify(ctx, other))
	assert.Len(t, provider.messages, 2)

	clk.Advance(16 * time.Minute)
	require.NoError(t, n.Notify(ctx, alert))
	assert.Len(t, provider.messages, 3)
}

func TestSlackNotifierRetriesAfterDeliveryFailure(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC))
	provider := &recordingProvider{err: errors.New("timeout")}
	n := NewSlackNotifier(provider, "#ops", "", clk, zap.NewNop())

	alert := domain.Alert{Kind: domain.KindMalformedIdentifier, Severity: domain.SeverityWarning, Key: "R", Summary: "bad id"}
	require.Error(t, n.Notify(context.Background(), alert))

	provider.err = nil
	require.NoError(t, n.Notify(context.Background(), alert))
	assert.Len(t, provider.messages, 1)
}
