package app

import (
	"fmt"

	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/database"
	"github.com/blues/giftreg/internal/gateway"
	"github.com/blues/giftreg/internal/handler"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/logic"
	"github.com/blues/giftreg/internal/router"
	"github.com/blues/giftreg/internal/task"
	"github.com/blues/giftreg/internal/webhook"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App 组装好的服务组件，server 与 giftctl 共用
type App struct {
	Config        *config.Config
	Log           *logger.Logger
	DB            *gorm.DB
	Gateway       *gateway.MercadoPago
	Gifts         *logic.GiftLogic
	Contributions *logic.ContributionLogic
	Reconcile     *logic.ReconcileLogic
	Checkout      *logic.CheckoutLogic
	Webhook       *webhook.Processor
	Sweeper       *task.PendingSweepJob
}

// New 按配置初始化日志、数据库与业务组件
func New(cfg *config.Config) (*App, error) {
	log, err := logger.NewFromConfig(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetDefaultLogger(log)

	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mp := gateway.NewMercadoPago(cfg.Gateway, cfg.Server.BaseURL, log)
	gifts := logic.NewGiftLogic(db)
	contributions := logic.NewContributionLogic(db)
	reconcile := logic.NewReconcileLogic(db, log)

	return &App{
		Config:        cfg,
		Log:           log,
		DB:            db,
		Gateway:       mp,
		Gifts:         gifts,
		Contributions: contributions,
		Reconcile:     reconcile,
		Checkout:      logic.NewCheckoutLogic(db, reconcile, mp, cfg.Contribution, log),
		Webhook:       webhook.NewProcessor(cfg.Webhook, mp, contributions, reconcile, log),
		Sweeper:       task.NewPendingSweepJob(contributions, mp, reconcile, cfg.Task, log),
	}, nil
}

// Router 构建 HTTP 路由
func (a *App) Router() *gin.Engine {
	if a.Config.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	return router.Setup(a.Config.Server, a.DB, router.Handlers{
		Gifts:      handler.NewGiftHandler(a.Gifts, a.Contributions),
		Contribute: handler.NewContributeHandler(a.Checkout),
		Webhook:    handler.NewWebhookHandler(a.Webhook),
	}, a.Log)
}

// StartTasks 启动定时任务，未启用时返回 nil
func (a *App) StartTasks() (*task.Manager, error) {
	if !a.Config.Task.Enabled {
		a.Log.Info("Background tasks disabled")
		return nil, nil
	}
	manager, err := task.NewManager(a.Log)
	if err != nil {
		return nil, err
	}
	if err := manager.Register(a.Sweeper); err != nil {
		return nil, err
	}
	manager.Start()
	return manager, nil
}

// Close 释放资源
func (a *App) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	a.Log.Sync()
}
