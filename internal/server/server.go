package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/metrica/internal/backfill"
	backfillservice "github.com/smallbiznis/metrica/internal/backfill/service"
	"github.com/smallbiznis/metrica/internal/cache"
	"github.com/smallbiznis/metrica/internal/clock"
	"github.com/smallbiznis/metrica/internal/config"
	"github.com/smallbiznis/metrica/internal/connector"
	"github.com/smallbiznis/metrica/internal/integration"
	integrationdomain "github.com/smallbiznis/metrica/internal/integration/domain"
	"github.com/smallbiznis/metrica/internal/metric"
	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
	"github.com/smallbiznis/metrica/internal/observability"
	obsmiddleware "github.com/smallbiznis/metrica/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/metrica/internal/observability/metrics"
	obstracing "github.com/smallbiznis/metrica/internal/observability/tracing"
	"github.com/smallbiznis/metrica/internal/projectgroup"
	projectgroupdomain "github.com/smallbiznis/metrica/internal/projectgroup/domain"
	"github.com/smallbiznis/metrica/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	cache.Module,
	connector.Module,
	integration.Module,
	projectgroup.Module,
	backfill.Module,
	metric.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	metricSvc       metricdomain.Service
	integrationSvc  integrationdomain.Service
	projectGroupSvc projectgroupdomain.Service
	orchestrator    *backfillservice.Orchestrator
	syncLimiter     *ratelimit.SyncLimiter
	obsMetrics      *obsmetrics.Metrics
	dashboardCfg    *config.DashboardConfigHolder
	log             *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	MetricSvc       metricdomain.Service
	IntegrationSvc  integrationdomain.Service
	ProjectGroupSvc projectgroupdomain.Service
	Orchestrator    *backfillservice.Orchestrator
	SyncLimiter     *ratelimit.SyncLimiter        `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics           `optional:"true"`
	DashboardCfg    *config.DashboardConfigHolder `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		metricSvc:       p.MetricSvc,
		integrationSvc:  p.IntegrationSvc,
		projectGroupSvc: p.ProjectGroupSvc,
		orchestrator:    p.Orchestrator,
		syncLimiter:     p.SyncLimiter,
		obsMetrics:      p.ObsMetrics,
		dashboardCfg:    p.DashboardCfg,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.GET("/dashboard", s.GetDashboard)

	v1.GET("/integrations/accounts", s.ListIntegrationAccounts)
	v1.GET("/integrations/accounts/:id", s.GetIntegrationAccount)
	v1.GET("/integrations/products", s.ListIntegrationProducts)

	v1.GET("/project-groups", s.ListProjectGroups)
	v1.POST("/project-groups", s.CreateProjectGroup)
	v1.GET("/project-groups/:id", s.GetProjectGroup)
	v1.PUT("/project-groups/:id", s.UpdateProjectGroup)
	v1.DELETE("/project-groups/:id", s.DeleteProjectGroup)

	v1.POST("/sync", s.RequestSync)
	v1.GET("/sync/status", s.GetSyncStatus)
}
