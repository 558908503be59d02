package seva

import (
	"github.com/smallbiznis/sevadesk/internal/invoicenumber"
	"github.com/smallbiznis/sevadesk/internal/seva/domain"
	"github.com/smallbiznis/sevadesk/internal/seva/repository"
	"github.com/smallbiznis/sevadesk/internal/seva/service"
	"go.uber.org/fx"
)

var Module = fx.Module("seva.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(repo domain.Repository) invoicenumber.Source { return repo }),
	fx.Provide(invoicenumber.NewAllocator),
	fx.Provide(service.New),
)
