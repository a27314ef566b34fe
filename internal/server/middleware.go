package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const actorContextKey = "admin_actor"

// adminIdentity trusts the identity header set by the authenticating proxy in
// front of the service. Requests without it never reach the admin handlers.
func (s *Server) adminIdentity() gin.HandlerFunc {
	header := s.cfg.AdminIdentityHeader
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(header))
		if actor == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) string {
	return c.GetString(actorContextKey)
}
