package report

import (
	"github.com/smallbiznis/sevadesk/internal/report/repository"
	"github.com/smallbiznis/sevadesk/internal/report/service"
	"github.com/smallbiznis/sevadesk/internal/report/storage"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(repository.Provide),
	fx.Provide(storage.New),
	fx.Provide(service.New),
)
