package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockroute/backend/internal/interfaces/http/dto"
)

const tooLargeMessage = "Request body exceeds maximum allowed size"

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap is refused before the handler runs; chunked bodies are cut off
// while being read and surface as 413 through HandleValidationError.
// A non-positive maxBytes disables the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func abortTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeRequestTooLarge, tooLargeMessage, getRequestIDFromContext(c)))
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
