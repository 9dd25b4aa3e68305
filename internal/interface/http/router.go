// Package http 借阅服务的HTTP适配层
package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiebiao/lending/internal/interface/http/handler"
	"github.com/xiebiao/lending/internal/interface/http/middleware"
	"github.com/xiebiao/lending/pkg/metrics"
)

// NewRouter 注册全部路由
// 中间件顺序：Logger → Recovery → 路由匹配 → Handler
func NewRouter(logger *zap.Logger, lendingHandler *handler.LendingHandler, catalogHandler *handler.CatalogHandler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		books := v1.Group("/books")
		{
			books.POST("", catalogHandler.RegisterBook)
			books.POST("/:id/loan", lendingHandler.LoanBook)
			books.POST("/:id/return", lendingHandler.ReturnBook)
			books.GET("/:id/availability", lendingHandler.GetAvailability)
		}

		members := v1.Group("/members")
		{
			members.POST("", catalogHandler.RegisterMember)
			members.GET("/top-active", lendingHandler.TopActiveMembers)
		}

		v1.POST("/loans/:id/extend", lendingHandler.ExtendDueDate)
	}

	return r
}
