package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslink/campuslink/internal/otp"
)

// RegisterOTPRoutes wires the explicit OTP endpoints. Both are independently
// callable; neither is gated behind a prior register or login.
func RegisterOTPRoutes(r fiber.Router, h *otp.Handler) {
	group := r.Group("/otp")
	group.Post("/send", h.Send)
	group.Post("/verify", h.Verify)
}
