package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pricereturns/internal/logger"
)

// RecoveryMiddleware turns a panic in a handler into a 500 dto.ErrorResponse.
//
// The panic value, request id, path and stack are logged at error level.
// When the handler already started writing, only the log line is produced.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			rid, _ := c.Get(RequestIDKey)
			log := logger.With("http")
			log.Error().
				Str("request_id", toString(rid)).
				Str("path", c.Request.URL.Path).
				Str("panic", fmt.Sprintf("%v", r)).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			AbortWithError(c, http.StatusInternalServerError, "Internal server error", fmt.Errorf("panic: %v", r))
		}()

		c.Next()
	}
}
