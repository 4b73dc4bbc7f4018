package web

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soltrackdao/pump_relay/config"
)

// MiddleAuth checks the shared-secret bearer token the webhook sender is
// configured with. The token is re-read per request so a config reload takes
// effect without a restart.
func MiddleAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := config.GetServerConfig().AuthToken
		if token == "" {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "msg": "unauthorized"})
			return
		}

		c.Next()
	}
}
