package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header is echoed back on every response so clients can correlate
	// log lines with their own traces.
	Header     = "X-Request-ID"
	contextKey = "request_id"
)

// Middleware tags each request with an ID, honouring one supplied by the
// caller and minting a UUID otherwise.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value reads the request ID back out of the Gin context.
func Value(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if id, isStr := v.(string); isStr {
			return id
		}
	}
	return ""
}
