package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/sevadesk/internal/alert/domain"
	"github.com/smallbiznis/sevadesk/internal/clock"
	"github.com/smallbiznis/sevadesk/internal/providers/slack"
	"go.uber.org/zap"
)

const defaultCooldown = 15 * time.Minute

// SlackNotifier posts alerts to a channel, suppressing repeats of the same
// kind and key inside the cooldown window.
type SlackNotifier struct {
	provider    slack.Provider
	channel     string
	environment string
	clock       clock.Clock
	cooldown    time.Duration
	log         *zap.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewSlackNotifier(provider slack.Provider, channel, environment string, clk clock.Clock, log *zap.Logger) *SlackNotifier {
	return &SlackNotifier{
		provider:    provider,
		channel:     channel,
		environment: environment,
		clock:       clk,
		cooldown:    defaultCooldown,
		log:         log.Named("alert"),
		lastSent:    make(map[string]time.Time),
	}
}

func (n *SlackNotifier) Notify(ctx context.Context, a domain.Alert) error {
	if a.RaisedAt.IsZero() {
		a.RaisedAt = n.clock.Now()
	}
	dedupeKey := string(a.Kind) + "/" + a.Key

	if !n.reserve(dedupeKey, a.RaisedAt) {
		n.log.Debug("alert suppressed", zap.String("kind", string(a.Kind)), zap.String("key", a.Key))
		return nil
	}

	if err := n.provider.PostMessage(ctx, n.channel, n.format(a)); err != nil {
		n.release(dedupeKey)
		n.log.Warn("failed to deliver alert", zap.String("kind", string(a.Kind)), zap.Error(err))
		return err
	}
	n.log.Info("alert delivered", zap.String("kind", string(a.Kind)), zap.String("key", a.Key))
	return nil
}

func (n *SlackNotifier) reserve(key string, at time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if last, ok := n.lastSent[key]; ok && at.Sub(last) < n.cooldown {
		return false
	}
	n.lastSent[key] = at
	return true
}

func (n *SlackNotifier) release(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.lastSent, key)
}

func (n *SlackNotifier) format(a domain.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(string(a.Severity)), a.Summary)
	if env := strings.TrimSpace(n.environment); env != "" {
		fmt.Fprintf(&b, " (%s)", env)
	}
	if a.Detail != "" {
		fmt.Fprintf(&b, "\n%s", a.Detail)
	}
	fmt.Fprintf(&b, "\nraised at %s", a.RaisedAt.UTC().Format(time.RFC3339))
	return b.String()
}
