package handlers

import (
	"tournament-dashboard/middleware"
	"tournament-dashboard/models"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

type TournamentHandler struct {
	Service *services.TournamentService
}

type tournamentRequest struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Location        string  `json:"location"`
	StartDate       string  `json:"startDate"`
	StartTime       string  `json:"startTime"`
	EndDate         string  `json:"endDate"`
	EndTime         string  `json:"endTime"`
	Status          string  `json:"status"`
	EntryFee        *int64  `json:"entryFee"`
	MaxParticipants *int    `json:"maxParticipants"`
	OrganizerID     string  `json:"organizerId"`
}

func SetupTournamentRoutes(api fiber.Router, h *TournamentHandler, session fiber.Handler) {
	// 🔓 Public
	api.Get("/tournaments", h.List)
	api.Get("/tournaments/slug/:slug", h.GetBySlug)
	api.Get("/tournaments/:id", h.Get)

	// 🔐 Organizers and admins
	api.Post("/tournaments", session, middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin), h.Create)
	api.Patch("/tournaments/:id", session, h.Update)
	api.Delete("/tournaments/:id", session, h.Delete)
}

func (h *TournamentHandler) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.UserContext(), services.TournamentFilter{
		Status:      c.Query("status"),
		OrganizerID: c.Query("organizerId"),
	})
	if err != nil {
		return fail(c, err, "fetch tournaments")
	}
	return c.JSON(list)
}

func (h *TournamentHandler) Get(c *fiber.Ctx) error {
	t, err := h.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "fetch tournament")
	}
	return c.JSON(t)
}

func (h *TournamentHandler) GetBySlug(c *fiber.Ctx) error {
	t, err := h.Service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, err, "fetch tournament")
	}
	return c.JSON(t)
}

func (h *TournamentHandler) Create(c *fiber.Ctx) error {
	var req tournamentRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, "create tournament")
	}
	t, err := h.Service.Create(c.UserContext(), middleware.CurrentActor(c), services.TournamentInput(req))
	if err != nil {
		return fail(c, err, "create tournament")
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *TournamentHandler) Update(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return fail(c, err, "update tournament")
	}
	patch := services.TournamentPatch{
		Name:            optional[string](f, "name"),
		Description:     nullable[string](f, "description"),
		Location:        optional[string](f, "location"),
		StartDate:       optional[string](f, "startDate"),
		StartTime:       optional[string](f, "startTime"),
		EndDate:         optional[string](f, "endDate"),
		EndTime:         optional[string](f, "endTime"),
		Status:          optional[string](f, "status"),
		EntryFee:        optional[int64](f, "entryFee"),
		MaxParticipants: nullable[int](f, "maxParticipants"),
	}
	if f.err != nil {
		return fail(c, f.err, "update tournament")
	}

	t, err := h.Service.Update(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), patch)
	if err != nil {
		return fail(c, err, "update tournament")
	}
	return c.JSON(t)
}

func (h *TournamentHandler) Delete(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return fail(c, err, "delete tournament")
	}
	return deleted(c, "Tournament")
}
