package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zippybox-server/config"
	"zippybox-server/internal/middleware"
)

// SetupRouter sets up all API routes. gatherer backs /metrics; nil means the
// default registry.
func SetupRouter(cfg *config.Config, files *FileHandler, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	if cfg.Server.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = cfg.Server.MaxMultipartMemory
	}

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/healthz", Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(&cfg.JWT))
		{
			filesGroup := protected.Group("/files")
			{
				filesGroup.POST("/upload", files.UploadFile)
				filesGroup.POST("/upload-folder", files.UploadFolder)
			}
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Authorization", "X-Requested-With"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
