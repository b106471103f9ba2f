package bootstrap

import (
	"database/sql"
	"net/http"
	"slices"

	httpapi "github.com/datakamer/datakamer-backend/internal/api/http"
	"github.com/datakamer/datakamer-backend/internal/api/http/middleware"
	"github.com/datakamer/datakamer-backend/internal/cache"
	catalogapi "github.com/datakamer/datakamer-backend/internal/catalog/http"
	"github.com/datakamer/datakamer-backend/internal/catalog/service"
	"github.com/datakamer/datakamer-backend/internal/media"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	DB             *sql.DB
	Cache          *cache.Views // optional
	Catalog        *service.Catalog
	Media          *media.Handler // optional
	Registry       *prometheus.Registry
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	if dep.Registry != nil {
		metrics, err := middleware.NewMetrics(dep.Registry)
		if err != nil {
			return nil, err
		}
		r.Use(metrics.Middleware())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(dep.Registry, promhttp.HandlerOpts{})))
	}

	// typed nils would read as wired dependencies
	var db, views httpapi.Pinger
	if dep.DB != nil {
		db = dep.DB
	}
	if dep.Cache != nil {
		views = dep.Cache
	}
	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, db, views).RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
	catalogapi.Register(api, dep.Catalog)

	if dep.Media != nil {
		dep.Media.RegisterUpload(api)
		dep.Media.RegisterServe(r)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
