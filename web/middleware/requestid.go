package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags every request so log lines and client error reports can
// be correlated. An inbound header wins, proxies often set one already.
func RequestID(c *gin.Context) {
	id := c.GetHeader("X-Request-Id")
	if id == "" {
		id = uuid.New().String()
	}
	c.Set("request_id", id)
	c.Writer.Header().Set("X-Request-Id", id)
	c.Next()
}
