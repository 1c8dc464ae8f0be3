package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/repository"
	"github.com/customeros/outreachstack/internal/utils"
)

type createIdentityRequest struct {
	Domain       string `json:"domain" binding:"required"`
	EmailAddress string `json:"emailAddress" binding:"required"`
}

// CreateIdentity enrolls a new sending identity. New identities always
// start at the bottom of the warmup schedule; there is no way to enroll
// one as established.
func CreateIdentity(repos *repository.Repositories, health interfaces.HealthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var request createIdentityRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := utils.Now()
		identity := &models.SendingIdentity{
			Tenant:          utils.GetTenantFromContext(ctx),
			Domain:          request.Domain,
			EmailAddress:    request.EmailAddress,
			HealthScore:     100,
			DailyLimit:      health.GetScheduleForDay(1),
			WarmupStage:     enum.WarmupStageNew,
			WarmupStartedAt: &now,
			Status:          enum.IdentityStatusWarming,
		}

		if err := repos.SendingIdentityRepository.Create(ctx, identity); err != nil {
			respondError(c, err)
			return
		}

		// Initial authentication snapshot; enrollment succeeds even when
		// DNS is not set up yet.
		if err := health.RefreshAuthentication(ctx, identity.ID); err != nil {
			c.JSON(http.StatusCreated, gin.H{"identity": identity, "warning": "authentication check failed: " + err.Error()})
			return
		}

		c.JSON(http.StatusCreated, identity)
	}
}

// GetIdentity returns one sending identity with its current health and
// warmup state.
func GetIdentity(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		identity, err := repos.SendingIdentityRepository.GetByID(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if identity == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": repository.ErrIdentityNotFound.Error()})
			return
		}

		c.JSON(http.StatusOK, identity)
	}
}

// CanSend reports the gating decision without reserving volume.
func CanSend(health interfaces.HealthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		decision, err := health.CanSend(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, decision)
	}
}

// RecomputeHealth forces a health-score recompute and returns the new
// score.
func RecomputeHealth(health interfaces.HealthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		score, err := health.RecomputeHealthScore(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"healthScore": score})
	}
}

// ResetWarmup restarts the identity's warmup schedule from day one.
func ResetWarmup(health interfaces.HealthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := health.ResetWarmup(ctx, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "warmup reset"})
	}
}

// RefreshAuthentication re-runs the DNS authentication and blacklist
// checks for the identity's domain.
func RefreshAuthentication(health interfaces.HealthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := health.RefreshAuthentication(ctx, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "authentication refreshed"})
	}
}
