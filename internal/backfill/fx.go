package backfill

import (
	"github.com/smallbiznis/metrica/internal/backfill/service"
	"go.uber.org/fx"
)

var Module = fx.Module("backfill.orchestrator",
	fx.Provide(service.NewOrchestrator),
)
