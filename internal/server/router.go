package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"beacon-core/internal/handler"
	"beacon-core/pkg/monitor"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(status *handler.StatusHandler, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(monitor.NewHTTPMetrics(reg).PrometheusMiddleware())

	r.GET("/health", status.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	{
		api.GET("/status", status.Status)
	}

	return r
}
