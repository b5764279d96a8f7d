// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with recovery, request logging and metrics.
func NewRouter(mode string, h *Handlers) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.logger), Metrics())
	SetupRoutes(r, h)
	return r
}

func SetupRoutes(r *gin.Engine, h *Handlers) {
	r.GET("/health", h.health)
	r.GET("/ready", h.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/industries", h.listIndustries)
		v1.GET("/industries/:industry", h.getIndustry)
		v1.GET("/industries/:industry/solutions", h.listSolutions)
		v1.POST("/roi/calculate", h.calculate)
	}
}
