package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/monobook/pkg/metrics"
)

// Metrics 记录HTTP请求数与耗时
// path使用路由模板(/api/v1/books/:id)，避免标签基数随ID膨胀
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
