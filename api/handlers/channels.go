package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
)

// ChannelRecommendation ranks the channels for a prospect.
func ChannelRecommendation(orchestrator interfaces.ChannelOrchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var prospect dto.Prospect
		if err := c.ShouldBindJSON(&prospect); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		recommendation, err := orchestrator.GetChannelRecommendation(ctx, &prospect)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, recommendation)
	}
}

// ChannelSwitchCheck answers whether the prospect should be moved off
// their current channel.
func ChannelSwitchCheck(orchestrator interfaces.ChannelOrchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var prospect dto.Prospect
		if err := c.ShouldBindJSON(&prospect); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		recommendation, err := orchestrator.ShouldSwitchChannel(ctx, &prospect)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, recommendation)
	}
}

type executeCampaignRequest struct {
	Prospect        *dto.Prospect     `json:"prospect" binding:"required"`
	Strategy        enum.StrategyType `json:"strategy" binding:"required"`
	MaxTotalTouches int               `json:"maxTotalTouches"`
}

// ExecuteCampaign plans the multi-touch sequence for a prospect and
// persists the planned touches.
func ExecuteCampaign(orchestrator interfaces.ChannelOrchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var request executeCampaignRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		touches, err := orchestrator.ExecuteCampaign(ctx, request.Prospect, request.Strategy, request.MaxTotalTouches)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"touches": touches})
	}
}
