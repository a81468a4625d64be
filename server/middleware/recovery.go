package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gonogo/errors"
	"github.com/kbukum/gonogo/logger"
)

// Recovery returns a gin middleware that turns a handler panic into a 500
// INTERNAL_ERROR envelope and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				requestID := RequestIDFromContext(c.Request.Context())
				log.Error("Panic recovered", map[string]interface{}{
					logger.FieldError:     fmt.Sprintf("%v", rec),
					"stack":               string(debug.Stack()),
					logger.FieldPath:      c.Request.URL.Path,
					logger.FieldMethod:    c.Request.Method,
					logger.FieldRequestID: requestID,
				})
				appErr := errors.Internal(fmt.Errorf("panic: %v", rec))
				c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponseFor(requestID))
			}
		}()
		c.Next()
	}
}
