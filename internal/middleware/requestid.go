package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"

	"github.com/charlesng35/memberhub/internal/auditctx"
)

const (
	// RequestIDHeader carries the request identifier in both directions.
	RequestIDHeader = "X-Request-ID"
	CtxRequestIDKey = "requestID"

	maxInboundRequestIDLength = 64
)

// RequestID tags every request with a KSUID, reusing a sane inbound X-Request-ID.
// Client IP, user agent and the id are seeded into the audit actor.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = ksuid.New().String()
		}

		c.Set(CtxRequestIDKey, id)
		c.Header(RequestIDHeader, id)

		actor := auditctx.Actor{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: id,
		}
		c.Request = c.Request.WithContext(auditctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(CtxRequestIDKey)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxInboundRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
