package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/metrics"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/repository"
	"github.com/customeros/outreachstack/internal/utils"
)

type addSuppressionRequest struct {
	EmailAddress string `json:"emailAddress" binding:"required"`
	Detail       string `json:"detail"`
}

// AddSuppression manually suppresses a recipient.
func AddSuppression(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var request addSuppressionRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := repos.SuppressionRepository.Create(ctx, &models.Suppression{
			Tenant:       utils.GetTenantFromContext(ctx),
			EmailAddress: request.EmailAddress,
			Reason:       enum.SuppressionManual,
			Detail:       request.Detail,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		metrics.SuppressionsTotal.WithLabelValues(enum.SuppressionManual.String()).Inc()
		c.JSON(http.StatusCreated, gin.H{"status": "suppressed"})
	}
}

// GetSuppression looks up one recipient on the suppression list.
func GetSuppression(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		suppression, err := repos.SuppressionRepository.GetByEmail(ctx, utils.GetTenantFromContext(ctx), c.Param("email"))
		if err != nil {
			respondError(c, err)
			return
		}
		if suppression == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipient is not suppressed"})
			return
		}

		c.JSON(http.StatusOK, suppression)
	}
}

// RemoveSuppression takes a recipient off the suppression list. Only
// manual and unsubscribe suppressions should be lifted this way; the
// caller owns that judgement.
func RemoveSuppression(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		err := repos.SuppressionRepository.Delete(ctx, utils.GetTenantFromContext(ctx), c.Param("email"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "removed"})
	}
}
