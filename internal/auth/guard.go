package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"callcenter_backend/platform/httpkit"
)

// SessionGuard enforces the single-active-session rule on every
// authenticated request. It runs after token validation, so the identity in
// the context is already trusted; what it adds is the check against the
// account's current session.
func SessionGuard(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := httpkit.GetIdentity(c)
		if !identity.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if err := svc.ValidateSession(c.Request.Context(), identity.UserID(), identity.SessionID()); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired, please log in again"})
			return
		}
		c.Next()
	}
}
