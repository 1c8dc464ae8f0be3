package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
)

type bounceWebhookRequest struct {
	IdentityID string          `json:"identityId" binding:"required"`
	Recipient  string          `json:"recipient" binding:"required"`
	BounceType enum.BounceType `json:"bounceType"`
	Detail     string          `json:"detail"`
}

// BounceWebhook records a provider bounce notification. Hard bounces
// suppress the recipient; soft bounces only feed the identity's rates.
// Providers that do not classify may omit bounceType; the type is then
// derived from the SMTP status in detail.
func BounceWebhook(health interfaces.HealthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var request bounceWebhookRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if request.BounceType != "" && request.BounceType != enum.BounceHard && request.BounceType != enum.BounceSoft {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bounceType must be hard or soft"})
			return
		}

		if err := health.TrackBounce(ctx, request.IdentityID, request.Recipient, request.Detail, request.BounceType); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "recorded"})
	}
}

type complaintWebhookRequest struct {
	IdentityID string `json:"identityId" binding:"required"`
	Recipient  string `json:"recipient" binding:"required"`
	Detail     string `json:"detail"`
}

// ComplaintWebhook records a spam complaint. Complaints always suppress
// the recipient.
func ComplaintWebhook(health interfaces.HealthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var request complaintWebhookRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := health.TrackComplaint(ctx, request.IdentityID, request.Recipient, request.Detail); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "recorded"})
	}
}

type engagementWebhookRequest struct {
	IdentityID string              `json:"identityId" binding:"required"`
	Recipient  string              `json:"recipient" binding:"required"`
	Kind       enum.EngagementType `json:"kind" binding:"required"`
}

// EngagementWebhook records an open, click or reply so the identity's
// engagement rates reflect recipient behavior.
func EngagementWebhook(health interfaces.HealthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var request engagementWebhookRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if request.Kind != enum.EngagementOpen && request.Kind != enum.EngagementClick && request.Kind != enum.EngagementReply {
			c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be open, click or reply"})
			return
		}

		if err := health.TrackEngagement(ctx, request.IdentityID, request.Recipient, request.Kind); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "recorded"})
	}
}

type unsubscribeWebhookRequest struct {
	EmailAddress string `json:"emailAddress" binding:"required"`
	Source       string `json:"source"`
}

// UnsubscribeWebhook processes a one-click unsubscribe.
func UnsubscribeWebhook(compliance interfaces.ComplianceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var request unsubscribeWebhookRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		source := request.Source
		if source == "" {
			source = "webhook"
		}

		if err := compliance.ProcessUnsubscribe(ctx, request.EmailAddress, source); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
	}
}
