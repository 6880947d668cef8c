package employees

import (
	"github.com/gin-gonic/gin"

	"github.com/peopleops/docflow/pkg/logger"
)

// SyncMiddleware keeps the directory current: every authenticated request
// upserts the caller's directory entry from their verified claims. Failures
// are logged, never block the request.
func SyncMiddleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := c.Get("claims"); ok {
			if claims, ok := raw.(map[string]interface{}); ok {
				if _, err := svc.UpsertFromClaims(c.Request.Context(), claims); err != nil {
					logger.Warnf("directory sync failed: %v", err)
				}
			}
		}
		c.Next()
	}
}
