package otp

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the explicit OTP endpoints. Unlike the implicit
// post-registration dispatch, failures here are always surfaced.
type Handler struct {
	svc *Service
}

// NewHandler constructs the OTP HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type sendRequest struct {
	Mobile string `json:"mobile"`
}

// Send starts a challenge for the mobile number.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Mobile == "" {
		return fiber.NewError(http.StatusBadRequest, "mobile is required")
	}

	if err := h.svc.Dispatch(c.UserContext(), req.Mobile); err != nil {
		switch {
		case errors.Is(err, ErrCooldown):
			return fiber.NewError(http.StatusTooManyRequests, err.Error())
		case errors.Is(err, ErrDispatchFailed):
			return fiber.NewError(http.StatusBadGateway, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "otp dispatch failed")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"sent": true})
}

type verifyRequest struct {
	Mobile string `json:"mobile"`
	Code   string `json:"code"`
}

// Verify checks a submitted code. A non-approved provider verdict is a normal
// response with approved=false, never a server error.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Mobile == "" || req.Code == "" {
		return fiber.NewError(http.StatusBadRequest, "mobile and code are required")
	}

	approved, err := h.svc.Confirm(c.UserContext(), req.Mobile, req.Code)
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, "otp verification failed")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"approved": approved})
}
