package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	auditdomain "github.com/commentloop/commentloop/internal/audit/domain"
	automationdomain "github.com/commentloop/commentloop/internal/automation/domain"
	"github.com/commentloop/commentloop/internal/config"
	discountdomain "github.com/commentloop/commentloop/internal/discount/domain"
	enginedomain "github.com/commentloop/commentloop/internal/engine/domain"
	ledgerdomain "github.com/commentloop/commentloop/internal/ledger/domain"
	obsmetrics "github.com/commentloop/commentloop/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger

	accountRepo   accountdomain.Repository
	automationSvc automationdomain.Service
	engineSvc     enginedomain.Service
	ledgerSvc     ledgerdomain.Ledger
	discountSvc   discountdomain.Service
	auditSvc      auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	AccountRepo   accountdomain.Repository
	AutomationSvc automationdomain.Service
	EngineSvc     enginedomain.Service
	LedgerSvc     ledgerdomain.Ledger
	DiscountSvc   discountdomain.Service
	AuditSvc      auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		db:     p.DB,
		log:    p.Log.Named("http"),

		accountRepo:   p.AccountRepo,
		automationSvc: p.AutomationSvc,
		engineSvc:     p.EngineSvc,
		ledgerSvc:     p.LedgerSvc,
		discountSvc:   p.DiscountSvc,
		auditSvc:      p.AuditSvc,
	}
	svc.registerRoutes()
	return svc
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(IdentityMiddleware())

	v1.POST("/comments/process", s.ProcessComment)

	v1.POST("/automations", s.CreateAutomation)
	v1.GET("/automations", s.ListAutomations)
	v1.GET("/automations/:id", s.GetAutomation)
	v1.PATCH("/automations/:id", s.UpdateAutomation)
	v1.DELETE("/automations/:id", s.DeleteAutomation)

	v1.GET("/activity", s.ListActivity)

	v1.POST("/discount-pools", s.CreateDiscountPool)
	v1.GET("/discount-pools/:id", s.GetDiscountPool)
	v1.POST("/discount-pools/:id/codes", s.AddDiscountCodes)
}
