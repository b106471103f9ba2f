package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusUp       = "up"
	statusDown     = "down"
	statusDisabled = "disabled"
)

// Pinger is satisfied by *sql.DB and *cache.Views.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db"`
	Cache     string    `json:"cache"`
}

// HealthHandler reports liveness plus the state of the catalog's backing
// stores. Only the database is required; a missing or failing cache leaves
// the service healthy.
type HealthHandler struct {
	serviceName string
	version     string
	db          Pinger
	cache       Pinger
	timeout     time.Duration
}

func NewHealthHandler(serviceName, version string, db, cache Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		cache:       cache,
		timeout:     time.Second,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        h.statusOf(c.Request.Context(), h.db),
		Cache:     h.statusOf(c.Request.Context(), h.cache),
	}

	code := http.StatusOK
	if resp.DB == statusDown {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (h *HealthHandler) statusOf(ctx context.Context, p Pinger) string {
	if p == nil {
		return statusDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := p.PingContext(ctx); err != nil {
		return statusDown
	}
	return statusUp
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
