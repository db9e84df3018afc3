// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"vanguard/internal/delivery/http/middleware"
	"vanguard/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimit      *middleware.RateLimitMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimit      *middleware.RateLimitMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		authMiddleware: params.AuthMiddleware,
		rateLimit:      params.RateLimit,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	authGroup := e.Group("/api/v1/auth")
	{
		authGroup.POST("/register", r.authHandler.Register, r.rateLimit.Register())
		authGroup.POST("/login", r.authHandler.Login, r.rateLimit.Login())
		authGroup.POST("/refresh", r.authHandler.Refresh, r.rateLimit.Refresh())
		authGroup.POST("/verify-email", r.authHandler.VerifyEmail, r.rateLimit.Verify())
		authGroup.POST("/resend-verification-email", r.authHandler.ResendVerification, r.rateLimit.Resend())

		// Routes below require a valid, non-revoked access token.
		authGroup.POST("/logout", r.authHandler.Logout, r.authMiddleware.Authenticate)
		authGroup.GET("/me", r.authHandler.GetProfile, r.authMiddleware.Authenticate)
	}
}
