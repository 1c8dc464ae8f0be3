package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/customeros/outreachstack/api/handlers"
	"github.com/customeros/outreachstack/api/middleware"
	"github.com/customeros/outreachstack/internal/repository"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())                                         // Gin's built-in recovery
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer())) // Our custom Jaeger recovery

	// Health check and metrics endpoints (no custom context needed)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-CUSTOMER-OS-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version and custom context
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.TenantValidationMiddleware())
	api.Use(middleware.CustomContextMiddleware("outreachstack")) // Add custom context for all /v1/* endpoints
	api.Use(middleware.TracingMiddleware())                      // Add tracing for all /v1/* endpoints
	{
		// Pipeline execution
		outreach := api.Group("/outreach")
		{
			outreach.POST("", handlers.ExecuteOutreach(s.OutreachService))
		}

		touches := api.Group("/touches")
		{
			touches.POST("/:id/dispatch", handlers.DispatchTouch(s.OutreachService))
		}

		// Sending identities and warmup
		identities := api.Group("/identities")
		{
			identities.POST("", handlers.CreateIdentity(repos, s.HealthService))
			identities.GET("/:id", handlers.GetIdentity(repos))
			identities.GET("/:id/can-send", handlers.CanSend(s.HealthService))
			identities.POST("/:id/recompute-health", handlers.RecomputeHealth(s.HealthService))
			identities.POST("/:id/reset-warmup", handlers.ResetWarmup(s.HealthService))
			identities.POST("/:id/refresh-authentication", handlers.RefreshAuthentication(s.HealthService))
		}

		// Content checks
		api.POST("/spamcheck", handlers.CheckSpamScore(s.SpamCheckService))
		api.POST("/sendtime", handlers.OptimalSendTime(s.SendTimeService))

		// Channel orchestration
		channels := api.Group("/channels")
		{
			channels.POST("/recommendation", handlers.ChannelRecommendation(s.ChannelOrchestrator))
			channels.POST("/switch-check", handlers.ChannelSwitchCheck(s.ChannelOrchestrator))
		}
		api.POST("/campaigns", handlers.ExecuteCampaign(s.ChannelOrchestrator))

		// Suppression list
		suppressions := api.Group("/suppressions")
		{
			suppressions.POST("", handlers.AddSuppression(repos))
			suppressions.GET("/:email", handlers.GetSuppression(repos))
			suppressions.DELETE("/:email", handlers.RemoveSuppression(repos))
		}

		// Provider callbacks
		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/bounce", handlers.BounceWebhook(s.HealthService))
			webhooks.POST("/complaint", handlers.ComplaintWebhook(s.HealthService))
			webhooks.POST("/engagement", handlers.EngagementWebhook(s.HealthService))
			webhooks.POST("/unsubscribe", handlers.UnsubscribeWebhook(s.ComplianceService))
		}
	}
}
