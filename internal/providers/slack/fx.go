package slack

import (
	"strings"

	"github.com/smallbiznis/sevadesk/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.slack",
	fx.Provide(NewFromConfig),
)

// NewFromConfig returns a webhook provider, or a no-op one when SLACK_WEBHOOK_URL is unset.
func NewFromConfig(cfg config.Config) Provider {
	if strings.TrimSpace(cfg.Slack.WebhookURL) == "" {
		return &NoOpProvider{}
	}
	return NewWebhookProvider(cfg.Slack.WebhookURL, nil)
}
