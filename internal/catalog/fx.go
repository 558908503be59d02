package catalog

import (
	"github.com/smallbiznis/sevadesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("catalog",
	fx.Provide(func(cfg config.Config, log *zap.Logger) (*Catalog, error) {
		c, err := Load(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		clog := log.Named("catalog")
		clog.Info("service catalog loaded",
			zap.String("version", c.Version()),
			zap.Int("entries", len(c.Entries())),
		)
		Watch(cfg.CatalogFile, c, clog)
		return c, nil
	}),
)
