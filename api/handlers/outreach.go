package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
)

// ExecuteOutreach runs the full execution pipeline for one prospect.
// Pipeline hard stops are reported on the result body, not as HTTP
// errors; only malformed requests and infrastructure failures map to
// error statuses.
func ExecuteOutreach(outreach interfaces.OutreachService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var request dto.OutreachRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := outreach.ExecuteOutreach(ctx, &request)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// DispatchTouch forces dispatch of a scheduled touch, running the same
// pre-dispatch re-checks the scheduler path runs.
func DispatchTouch(outreach interfaces.OutreachService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := outreach.DispatchDueTouch(ctx, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "dispatched"})
	}
}
