package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/clock"
	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/smallbiznis/sevadesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/sevadesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/sevadesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/sevadesk/internal/observability/tracing"
	"github.com/smallbiznis/sevadesk/internal/providers/pdf"
	"github.com/smallbiznis/sevadesk/internal/ratelimit"
	reportdomain "github.com/smallbiznis/sevadesk/internal/report/domain"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
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
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine    *gin.Engine
	cfg       config.Config
	catalog   *catalog.Catalog
	sevaSvc   sevadomain.Service
	reportSvc reportdomain.Service
	pdf       pdf.Provider
	clock     clock.Clock

	reportLimiter reportLimiter
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Catalog   *catalog.Catalog
	SevaSvc   sevadomain.Service
	ReportSvc reportdomain.Service
	PDF       pdf.Provider
	Clock     clock.Clock

	ReportLimiter *ratelimit.ReportLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		catalog:   p.Catalog,
		sevaSvc:   p.SevaSvc,
		reportSvc: p.ReportSvc,
		pdf:       p.PDF,
		clock:     p.Clock,
	}
	if p.ReportLimiter.Enabled() {
		svc.reportLimiter = p.ReportLimiter
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/catalog", s.ListCatalog)

	// -------- Services --------
	api.POST("/services", s.CreateService)
	api.GET("/services/:invoiceId", s.GetService)
	api.GET("/services/:invoiceId/slip", s.RenderServiceSlip)

	// -------- Reports --------
	api.GET("/reports/monthly", s.ReportRateLimit(), s.DownloadMonthlyReport)
	api.GET("/reports/monthly/summary", s.GetMonthlyReportSummary)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
