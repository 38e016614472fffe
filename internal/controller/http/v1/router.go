// Package v1 implements routing paths. Each service in its own file.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"image_conversion/config"
	"image_conversion/entity"
	"image_conversion/pkg/logger"
)

const traceName = "http-v1"

// NewRouter -.
func NewRouter(handler *gin.Engine, l logger.Interface, cu entity.ConversionUsecase, cfg *config.Config) {
	// Options
	handler.Use(gin.Recovery())
	handler.Use(requestID())
	handler.Use(securityHeaders())

	// Swagger
	handler.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Liveness. Deliberately ignorant of the worker pool: a saturated
	// pool is busy, not dead.
	handler.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.App.Name})
	})

	// Benchmark/upload page; served straight off disk, outside the
	// permit budget.
	handler.NoRoute(gin.WrapH(http.FileServer(http.Dir("./static"))))

	// Routers
	h := handler.Group("/api")
	{
		newConvertRoutes(h, cu, l, cfg)
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Next()
	}
}
