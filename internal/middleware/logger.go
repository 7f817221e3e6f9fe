package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID is the correlation header, echoed back on every response
	// so callers can quote it when reporting a problem.
	HeaderRequestID = "X-Request-ID"
	// ContextKeyRequestID is the gin context key the correlation ID lives under.
	ContextKeyRequestID = "request_id"
)

// RequestID tags each request with a correlation ID, keeping a caller-supplied
// one when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// Logger writes one access-log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		log.Printf("http: %s %s -> %d in %s request_id=%s",
			c.Request.Method, path, c.Writer.Status(), time.Since(start),
			c.GetString(ContextKeyRequestID))
	}
}

// Recovery turns panics into 500 responses.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
