package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/statusunknown418/thearq/internal/clock"
	"github.com/statusunknown418/thearq/internal/config"
	"github.com/statusunknown418/thearq/internal/logger"
	"github.com/statusunknown418/thearq/internal/member"
	"github.com/statusunknown418/thearq/internal/migration"
	obsmetrics "github.com/statusunknown418/thearq/internal/observability/metrics"
	"github.com/statusunknown418/thearq/internal/project"
	projectdomain "github.com/statusunknown418/thearq/internal/project/domain"
	"github.com/statusunknown418/thearq/internal/report"
	reportdomain "github.com/statusunknown418/thearq/internal/report/domain"
	"github.com/statusunknown418/thearq/internal/timeentry"
	timeentrydomain "github.com/statusunknown418/thearq/internal/timeentry/domain"
	"github.com/statusunknown418/thearq/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	logger.Module,
	obsmetrics.Module,
	db.Module,
	clock.Module,
	member.Module,
	project.Module,
	timeentry.Module,
	report.Module,
	migration.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	db          *gorm.DB
	entrySvc    timeentrydomain.Service
	reportSvc   reportdomain.Service
	projectRepo projectdomain.Repository
	registry    *prometheus.Registry
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	EntrySvc    timeentrydomain.Service
	ReportSvc   reportdomain.Service
	ProjectRepo projectdomain.Repository
	Registry    *prometheus.Registry `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		db:          p.DB,
		entrySvc:    p.EntrySvc,
		reportSvc:   p.ReportSvc,
		projectRepo: p.ProjectRepo,
		registry:    p.Registry,
	}
}
// RegisterAPIRoutes mounts the tracker and reporting surface. Identity
// arrives from the upstream auth layer; every route below is workspace
// scoped.
func (s *Server) RegisterAPIRoutes() {
	if s.registry != nil && s.cfg.MetricsEnabled {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	v1 := s.engine.Group("/v1", Identity())
	ws := v1.Group("/workspaces/:workspace_id", WorkspaceContext())

	ws.POST("/timer/start", s.StartTimer)
	ws.POST("/timer/stop/:entry_id", s.StopTimer)
	ws.GET("/timer/running", s.RunningEntry)

	ws.POST("/entries", s.CreateEntry)
	ws.GET("/entries", s.ListEntries)
	ws.PATCH("/entries/:entry_id", s.UpdateEntry)
	ws.DELETE("/entries/:entry_id", s.DeleteEntry)

	ws.GET("/projects", s.ListProjects)
	ws.GET("/clients", s.ListClients)

	ws.GET("/reports/totals", s.ReportTotals)
	ws.GET("/reports/grouped", s.ReportGrouped)
	ws.GET("/reports/series", s.ReportSeries)
	ws.GET("/reports/budget/:project_id", s.ReportBudget)
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
