package handlers

import (
	"tournament-dashboard/middleware"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Service *services.AuthService
}

func SetupAuthRoutes(api fiber.Router, h *AuthHandler, session, serviceToken fiber.Handler) {
	auth := api.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/session", serviceToken, h.IssueForUser)
	auth.Get("/me", session, h.Me)
	auth.Post("/logout", session, h.Logout)
}

// Login is the development sign-in by email.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := bind(c, &req); err != nil {
		return fail(c, err, "sign in")
	}
	issued, err := h.Service.LoginByEmail(c.UserContext(), req.Email)
	if err != nil {
		return fail(c, err, "sign in")
	}
	return c.JSON(issued)
}

// IssueForUser lets the identity provider mint a session after it has
// authenticated the user itself.
func (h *AuthHandler) IssueForUser(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := bind(c, &req); err != nil {
		return fail(c, err, "create session")
	}
	if req.UserID == "" {
		return fail(c, &services.ValidationError{Message: "userId is required"}, "create session")
	}
	issued, err := h.Service.Issue(c.UserContext(), req.UserID)
	if err != nil {
		return fail(c, err, "create session")
	}
	return c.Status(fiber.StatusCreated).JSON(issued)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Service.Revoke(c.UserContext(), middleware.CurrentToken(c)); err != nil {
		return fail(c, err, "sign out")
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}
