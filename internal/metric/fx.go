package metric

import (
	"github.com/smallbiznis/metrica/internal/metric/repository"
	"github.com/smallbiznis/metrica/internal/metric/service"
	"go.uber.org/fx"
)

var Module = fx.Module("metric.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
