package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"

	"sales_backend/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request id and a scoped zap logger to the
// request context and writes one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		log := logger.L().With(logger.RequestID(reqID))
		c.Request = c.Request.WithContext(logger.ToContext(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}
		if ce := log.Check(level, "request"); ce != nil {
			ce.Write(
				logger.Method(c.Request.Method),
				logger.Path(c.Request.URL.Path),
				logger.Status(status),
				logger.Duration(time.Since(start)),
				logger.ClientIP(c.ClientIP()),
			)
		}
	}
}
