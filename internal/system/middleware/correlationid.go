package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/revops/intake-service/internal/system/constants"
)

func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := extractCorrelationID(c)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set(constants.CorrelationIDKey, correlationID)
		c.Header(constants.CorrelationIDHeaderName, correlationID)
		c.Next()
	}
}

func extractCorrelationID(c *gin.Context) string {
	headers := []string{constants.CorrelationIDHeaderName, "X-Request-ID", "X-Trace-ID"}
	for _, header := range headers {
		if id := c.GetHeader(header); id != "" {
			return id
		}
	}
	return ""
}

// RequestLogger returns a log entry tagged with the request's correlation ID.
func RequestLogger(c *gin.Context, logger *logrus.Logger) *logrus.Entry {
	return logger.WithField(constants.CorrelationIDKey, c.GetString(constants.CorrelationIDKey))
}

// AccessLog logs one line per request once the handler chain has finished.
func AccessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		RequestLogger(c, logger).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		}).Debug("request handled")
	}
}
