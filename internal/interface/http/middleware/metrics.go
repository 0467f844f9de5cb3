package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/shoptrack/pkg/metrics"
)

// Metrics HTTP请求指标：总数、耗时、进行中
// path 标签用路由模板（/api/v1/orders/:id），不用实际URL
func Metrics() gin.HandlerFunc {
	metrics.InitMetrics()
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		c.Next()

		metrics.ObserveHTTPRequest(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}
