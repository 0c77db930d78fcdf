package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ActorIDKey   = "actorID"
	ActorRoleKey = "actorRole"

	actorIDHeader   = "X-Actor-Id"
	actorRoleHeader = "X-Actor-Role"
)

// ActorMiddleware extracts the authenticated actor identity forwarded by
// the gateway. Authentication itself happens upstream; the engine only
// needs to know who is acting, and refuses requests that carry no
// identity.
type ActorMiddleware struct{}

func NewActorMiddleware() *ActorMiddleware {
	return &ActorMiddleware{}
}

func (am *ActorMiddleware) RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(actorIDHeader)
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + actorIDHeader + " header",
			})
			return
		}
		c.Set(ActorIDKey, actorID)
		c.Set(ActorRoleKey, c.GetHeader(actorRoleHeader))
		c.Next()
	}
}
