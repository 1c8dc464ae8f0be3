package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
)

// CheckSpamScore scores message content without sending anything.
func CheckSpamScore(spamCheck interfaces.SpamCheckService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var message dto.OutreachMessage
		if err := c.ShouldBindJSON(&message); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, spamCheck.CheckSpamScore(message))
	}
}

type sendTimeRequest struct {
	Prospect    *dto.Prospect           `json:"prospect" binding:"required"`
	Constraints dto.SendTimeConstraints `json:"constraints"`
}

// OptimalSendTime returns the best send slot for a prospect within the
// requested bounds.
func OptimalSendTime(sendTime interfaces.SendTimeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request sendTimeRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		optimal, err := sendTime.CalculateOptimalSendTime(request.Prospect, request.Constraints)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, optimal)
	}
}
