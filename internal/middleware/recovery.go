package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stars-workflow-api/internal/response"
)

// Recovery turns a handler panic into a 500 envelope and one structured log entry.
// gin's own stderr dump is discarded; the stack goes to zap instead.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		userID, _ := c.Get(UserIDKey)
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("route", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.String("request_id", c.GetString(response.RequestIDKey)),
			zap.Any("user_id", userID),
			zap.Stack("stacktrace"),
		)
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
		c.Abort()
	})
}
