package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Subham7008/Quick-Serve/internal/handler"
	"github.com/Subham7008/Quick-Serve/internal/middleware"
	"github.com/Subham7008/Quick-Serve/internal/model"
)

// APIPrefix is where every application route is mounted.
const APIPrefix = "/api"

// RegisterRoutes registers routes that live outside the API prefix.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff user and shop owner routes.  The
// credential exchanges (signup, login, registration and both OTP steps) are
// unauthenticated and go through limit; profile and logout need a bearer
// token.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, s *handler.ShopOwnerHandler, requireAuth, limit echo.MiddlewareFunc) {
	users := api.Group("/users")
	users.POST("/signup", a.Signup, limit)
	users.POST("/login", a.Login, limit)
	users.POST("/logout", a.Logout, requireAuth)

	// Profile data belongs to staff users only.
	profile := users.Group("/profile", requireAuth, middleware.RequireKind(model.SubjectUser))
	profile.GET("", a.GetProfile)
	profile.PUT("", a.UpdateProfile)

	owners := api.Group("/shop-owners", limit)
	owners.POST("/register", s.Register)
	owners.POST("/login/send-otp", s.SendOTP)
	owners.POST("/login/verify-otp", s.VerifyOTP)
}
