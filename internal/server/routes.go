package server

import (
	"net/http"

	"github.com/evently/evently/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter()
	requireAuth := middleware.Auth(s.userStore)

	s.E.POST("/signup", s.authHandler.Signup, rateLimiter)
	s.E.POST("/login", s.authHandler.Login, rateLimiter)
	s.E.POST("/logout", s.authHandler.Logout)
	s.E.GET("/me", s.authHandler.Me, requireAuth)
	s.E.POST("/password", s.authHandler.ChangePassword, requireAuth)

	// Static routes must be registered before /events/:id so "search" and
	// friends are not captured as ids.
	s.E.GET("/events", s.eventHandler.List)
	s.E.GET("/events/search", s.eventHandler.Search)
	s.E.GET("/events/upcoming", s.eventHandler.Upcoming)
	s.E.GET("/events/popular", s.eventHandler.Popular)
	s.E.GET("/events/stats", s.eventHandler.Stats)
	s.E.GET("/events/category/:category", s.eventHandler.ByCategory)
	s.E.GET("/events/mine", s.eventHandler.Mine, requireAuth)
	s.E.GET("/events/:id", s.eventHandler.Get)
	s.E.POST("/events", s.eventHandler.Create, requireAuth)
	s.E.PUT("/events/:id", s.eventHandler.Update, requireAuth)
	s.E.DELETE("/events/:id", s.eventHandler.Delete, requireAuth)

	s.E.POST("/events/:id/register", s.eventHandler.Register, requireAuth)
	s.E.DELETE("/events/:id/register", s.eventHandler.Unregister, requireAuth)

	s.E.GET("/ws/announcements", s.wsHandler.Announcements)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
