package projectgroup

import (
	"github.com/smallbiznis/metrica/internal/projectgroup/repository"
	"github.com/smallbiznis/metrica/internal/projectgroup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("projectgroup.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
