package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslink/campuslink/internal/auth"
)

// RegisterAuthRoutes wires account endpoints. requireSession guards the
// current-identity query; register/login/logout are public.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, requireSession fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Post("/logout", h.Logout)
	group.Get("/me", requireSession, h.Me)
}
