// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Hafiizherdian/dashboard2y2/internal/api/handlers"
	"github.com/Hafiizherdian/dashboard2y2/internal/api/middleware"
)

type Services struct {
	SalesService handlers.SalesService
	AreaService  handlers.AreaService
}

type Options struct {
	AllowedOrigins   []string
	UploadsPerMinute int
	MaxUploadBytes   int64
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.SalesService != nil {
			salesHandler := handlers.NewSalesHandler(services.SalesService, opts.MaxUploadBytes)
			apiGroup.POST("/upload", middleware.RateLimit(opts.UploadsPerMinute), salesHandler.Upload)

			filesGroup := apiGroup.Group("/files")
			{
				filesGroup.GET("", salesHandler.ListFiles)
				filesGroup.DELETE("/:id", salesHandler.DeleteFile)
			}

			salesGroup := apiGroup.Group("/sales")
			{
				salesGroup.GET("", salesHandler.ListSales)
				salesGroup.POST("", salesHandler.CreateSales)
			}

			apiGroup.GET("/stats", salesHandler.Stats)
			apiGroup.GET("/cities", salesHandler.Cities)
			apiGroup.GET("/dashboard", salesHandler.Dashboard)
		}

		if services.AreaService != nil {
			areaHandler := handlers.NewAreaHandler(services.AreaService)
			areasGroup := apiGroup.Group("/areas")
			{
				areasGroup.GET("", areaHandler.List)
				areasGroup.POST("", areaHandler.Apply)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
