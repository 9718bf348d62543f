// Package router 组装Gin引擎：全局中间件、运维接口和/api/v1业务路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/monobook/internal/infrastructure/config"
	"github.com/xiebiao/monobook/internal/interface/http/handler"
	"github.com/xiebiao/monobook/internal/interface/http/middleware"
	"github.com/xiebiao/monobook/pkg/metrics"
	"github.com/xiebiao/monobook/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	User    *handler.UserHandler
	Author  *handler.AuthorHandler
	Book    *handler.BookHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
}

// New 创建Gin引擎并注册路由
// 中间件顺序：Recovery → Logger → Tracing → Metrics → 路由级(限流/认证) → Handler
func New(cfg *config.Config, h *Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	metrics.InitMetrics()

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.Tracing(),
		middleware.Metrics(),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// 访问 /swagger/index.html 查看API文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := auth.RequireAuth()

	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		limit := func(c *gin.Context) { c.Next() }
		if cfg.RateLimit.Enabled {
			limit = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Handler()
		}
		users.POST("/register", limit, h.User.Register)
		users.POST("/token", limit, h.User.Token)
		users.POST("/token/refresh", h.User.Refresh)
		users.POST("/logout", requireAuth, h.User.Logout)
		users.GET("/profile", requireAuth, h.User.Profile)
	}

	// 查询公开，写操作需要登录
	authors := v1.Group("/authors")
	{
		authors.GET("", h.Author.List)
		authors.GET("/:id", h.Author.Get)
		authors.POST("", requireAuth, h.Author.Create)
		authors.PUT("/:id", requireAuth, h.Author.Update)
		authors.DELETE("/:id", requireAuth, h.Author.Delete)
	}

	books := v1.Group("/books")
	{
		books.GET("", h.Book.List)
		books.GET("/:id", h.Book.Get)
		books.POST("", requireAuth, h.Book.Create)
		books.PUT("/:id", requireAuth, h.Book.Update)
		books.DELETE("/:id", requireAuth, h.Book.Delete)
	}

	orders := v1.Group("/orders")
	{
		orders.POST("", middleware.AllowedHosts(cfg.Server.AllowedHosts), auth.OptionalAuth(), h.Order.Create)
		orders.GET("", requireAuth, h.Order.List)
		orders.GET("/:id", requireAuth, h.Order.Get)
	}

	v1.POST("/payments/monobank/callback", h.Payment.MonobankCallback)

	return r
}
