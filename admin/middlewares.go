package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seb7887/evbus/idgen"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

func ErrorFormatterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest && !c.Writer.Written() {
			c.JSON(c.Writer.Status(), gin.H{
				"message": http.StatusText(c.Writer.Status()),
			})
		}
	}
}

// RequestIDMiddleware keeps the caller's request id or assigns a new UUID,
// and echoes it in the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = idgen.NewUUID()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func AccessLogMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("admin request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString(RequestIDHeader)),
		)
	}
}
