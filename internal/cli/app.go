package cli

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sevadesk/internal/alert"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/clock"
	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/smallbiznis/sevadesk/internal/lock"
	"github.com/smallbiznis/sevadesk/internal/migration"
	"github.com/smallbiznis/sevadesk/internal/observability"
	"github.com/smallbiznis/sevadesk/internal/pricing"
	"github.com/smallbiznis/sevadesk/internal/providers"
	"github.com/smallbiznis/sevadesk/internal/report"
	"github.com/smallbiznis/sevadesk/internal/seva"
	"github.com/smallbiznis/sevadesk/pkg/db"
	"go.uber.org/fx"
)

// coreModules is everything both the server and one-shot commands need.
func coreModules() fx.Option {
	return fx.Options(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		lock.Module,

		// Functional Domains
		providers.Module,
		alert.Module,
		catalog.Module,
		pricing.Module,
		seva.Module,
		report.Module,
	)
}

// RegisterSnowflake returns the id generator for the configured node.
func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
