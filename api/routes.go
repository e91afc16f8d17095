package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/sponsorengage/mailer/api/handlers"
	"github.com/sponsorengage/mailer/api/middleware"
	"github.com/sponsorengage/mailer/internal/repository"
	"github.com/sponsorengage/mailer/internal/tracing"
	"github.com/sponsorengage/mailer/services"
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
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// Health check endpoint (no auth needed)
	r.GET("/health", handlers.HealthCheck)

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-ENGAGE-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.TracingMiddleware())
	{
		invitations := api.Group("/invitations")
		{
			invitations.POST("", handlers.SendInvitations(s.InvitationSender))
			invitations.POST("/monitor", handlers.TriggerInvitationMonitor(s.InvitationMonitor))
		}
	}
}
