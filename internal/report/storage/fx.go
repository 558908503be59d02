package storage

import (
	"context"

	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/smallbiznis/sevadesk/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New selects the artifact store from REPORT_STORAGE.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (domain.Storage, error) {
	if cfg.Report.Storage != config.ReportStorageMinIO {
		return NewLocal(cfg.Report.Dir)
	}

	store, err := NewMinIO(cfg.Report.MinIO, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.EnsureBucket(ctx)
		},
	})
	return store, nil
}
