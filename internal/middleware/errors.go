package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pricereturns/internal/domain/dto"
	"github.com/guttosm/pricereturns/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a JSON error body.
//
// Behavior:
//   - Runs after the handler chain.
//   - Does nothing when no error was attached or a body was already written.
//   - Otherwise logs the last error and responds 500 with dto.ErrorResponse.
//
// Usage:
//
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	last := c.Errors.Last()
	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Err(last.Err).
		Str("request_id", toString(rid)).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if c.Writer.Written() {
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", last.Err))
}

// AbortWithError stops the chain and writes a dto.ErrorResponse with the given status.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
