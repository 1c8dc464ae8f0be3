package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var tenantHeaders = []string{"tenant", "Tenant", "TENANT", "tenantname", "TenantName", "tenantName", "TENANTNAME"}

func TenantValidationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := ""
		for _, header := range tenantHeaders {
			if value := strings.TrimSpace(c.GetHeader(header)); value != "" {
				tenant = value
				break
			}
		}

		if tenant == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tenant header is required"})
			c.Abort()
			return
		}

		// Store in gin context for later use
		c.Set("TenantName", tenant)
		c.Next()
	}
}
