package integration

import (
	"github.com/smallbiznis/metrica/internal/integration/repository"
	"github.com/smallbiznis/metrica/internal/integration/service"
	"go.uber.org/fx"
)

var Module = fx.Module("integration.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
