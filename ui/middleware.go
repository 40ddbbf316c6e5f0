package ui

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"surveyml/internal/errors"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), s.requestLogger())
}

// requestLogger logs one line per request through the application logger
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("[HTTP] %s %s -> %d in %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// statusFor maps application error codes onto HTTP statuses
func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeConfigInvalid:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeNotTrained, errors.CodePrecondition:
		return http.StatusConflict
	case errors.CodeDataQuality, errors.CodeTrainingFailed:
		return http.StatusUnprocessableEntity
	case errors.CodeDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error", "code"} with the status its code maps to
func (s *Server) writeError(c *gin.Context, err error) {
	err = errors.FromDomain(err)
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
