package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	// CtxRequestID is read by the response envelope and the access log.
	CtxRequestID = "request_id"
)

// RequestIDMiddleware tags each request with an id, reusing the caller's X-Request-ID when it is a UUID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil || id == "" {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}
