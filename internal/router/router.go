package router

import (
	"net/http"

	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/database"
	"github.com/blues/giftreg/internal/handler"
	"github.com/blues/giftreg/internal/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Gifts      *handler.GiftHandler
	Contribute *handler.ContributeHandler
	Webhook    *handler.WebhookHandler
}

func Setup(cfg config.ServerConfig, db *gorm.DB, h Handlers, log *logger.Logger) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(requestLogger(log.Named("http")))
	r.Use(gin.Recovery())
	r.Use(securityHeaders())
	r.Use(corsMiddleware(cfg.CORSOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "gift-registry",
			"database": "ok",
		})
	})

	api := r.Group("/api")
	{
		gifts := api.Group("/gifts")
		{
			gifts.GET("", h.Gifts.GetGifts)
			gifts.GET("/:id", h.Gifts.GetGift)
			gifts.GET("/:id/stats", h.Gifts.GetGiftStats)
			gifts.GET("/:id/contributions", h.Gifts.GetGiftContributions)
		}
		api.POST("/contribute", h.Contribute.Contribute)
	}

	r.POST("/webhook/mercadopago", h.Webhook.MercadoPago)

	return r
}
