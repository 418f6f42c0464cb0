package handlers

import (
	"tournament-dashboard/middleware"
	"tournament-dashboard/models"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

type RegistrationHandler struct {
	Service *services.RegistrationService
}

type registrationRequest struct {
	TournamentID string `json:"tournamentId"`
	UserID       string `json:"userId"`
	Status       string `json:"status"`
}

func SetupRegistrationRoutes(api fiber.Router, h *RegistrationHandler, session fiber.Handler) {
	regs := api.Group("/registrations", session)
	regs.Get("/", h.List)
	regs.Get("/:id", h.Get)
	regs.Post("/", h.Create)
	regs.Patch("/:id", h.Update)
	regs.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.Delete)
}

func (h *RegistrationHandler) List(c *fiber.Ctx) error {
	regs, err := h.Service.List(c.UserContext(), middleware.CurrentActor(c), services.RegistrationFilter{
		TournamentID: c.Query("tournamentId"),
		UserID:       c.Query("userId"),
		Status:       c.Query("status"),
	})
	if err != nil {
		return fail(c, err, "fetch registrations")
	}
	return c.JSON(regs)
}

func (h *RegistrationHandler) Get(c *fiber.Ctx) error {
	reg, err := h.Service.Get(c.UserContext(), middleware.CurrentActor(c), c.Params("id"))
	if err != nil {
		return fail(c, err, "fetch registration")
	}
	return c.JSON(reg)
}

func (h *RegistrationHandler) Create(c *fiber.Ctx) error {
	var req registrationRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, "create registration")
	}
	reg, err := h.Service.Register(c.UserContext(), middleware.CurrentActor(c), services.RegisterInput(req))
	if err != nil {
		return fail(c, err, "create registration")
	}
	return c.Status(fiber.StatusCreated).JSON(reg)
}

// Update applies a lifecycle transition; status is the only mutable field.
func (h *RegistrationHandler) Update(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return fail(c, err, "update registration")
	}
	status := optional[string](f, "status")
	if f.err != nil {
		return fail(c, f.err, "update registration")
	}
	if status == nil {
		return fail(c, &services.ValidationError{Message: "status is required"}, "update registration")
	}

	reg, err := h.Service.ChangeStatus(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), models.RegistrationStatus(*status))
	if err != nil {
		return fail(c, err, "update registration")
	}
	return c.JSON(reg)
}

func (h *RegistrationHandler) Delete(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err, "delete registration")
	}
	return deleted(c, "Registration")
}
