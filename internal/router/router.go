// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; /v1/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout with a refresh token in the body needs no JWT.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	// Authenticated logout without a body revokes every session.
	auth.POST("/logout", a.Logout)
}

// RegisterPublic registers the guest-facing menu browse endpoints.
// They carry no JWT middleware; cacheMW is the Redis response cache,
// pass nil to serve uncached.
func RegisterPublic(e *echo.Echo, p *handler.PublicMenuHandler, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1/menu")
	if cacheMW != nil {
		g.Use(cacheMW)
	}
	g.GET("/categories", p.GetCategories)
	g.GET("/products", p.GetProducts)
	g.GET("/products/:id", p.GetProduct)
	g.GET("/combos", p.GetCombos)
}
