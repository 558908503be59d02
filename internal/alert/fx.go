package alert

import (
	"github.com/smallbiznis/sevadesk/internal/alert/domain"
	"github.com/smallbiznis/sevadesk/internal/clock"
	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/smallbiznis/sevadesk/internal/providers/slack"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("alert",
	fx.Provide(func(provider slack.Provider, cfg config.Config, clk clock.Clock, log *zap.Logger) domain.Notifier {
		return NewSlackNotifier(provider, cfg.Slack.Channel, cfg.Environment, clk, log)
	}),
)
