package handlers

import (
	"tournament-dashboard/middleware"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

type TeamHandler struct {
	Service *services.TeamService
}

type teamRequest struct {
	TournamentID string `json:"tournamentId"`
	Name         string `json:"name"`
	Wins         *int   `json:"wins"`
	Losses       *int   `json:"losses"`
	Draws        *int   `json:"draws"`
	Points       *int   `json:"points"`
}

func SetupTeamRoutes(api fiber.Router, h *TeamHandler, session fiber.Handler) {
	api.Get("/teams", h.List)
	api.Get("/teams/:id", h.Get)
	api.Post("/teams", session, h.Create)
	api.Patch("/teams/:id", session, h.Update)
	api.Delete("/teams/:id", session, h.Delete)
}

func (h *TeamHandler) List(c *fiber.Ctx) error {
	teams, err := h.Service.List(c.UserContext(), c.Query("tournamentId"))
	if err != nil {
		return fail(c, err, "fetch teams")
	}
	return c.JSON(teams)
}

func (h *TeamHandler) Get(c *fiber.Ctx) error {
	team, err := h.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "fetch team")
	}
	return c.JSON(team)
}

func (h *TeamHandler) Create(c *fiber.Ctx) error {
	var req teamRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, "create team")
	}
	team, err := h.Service.Create(c.UserContext(), middleware.CurrentActor(c), services.TeamInput(req))
	if err != nil {
		return fail(c, err, "create team")
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

func (h *TeamHandler) Update(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return fail(c, err, "update team")
	}
	patch := services.TeamPatch{
		Name:   optional[string](f, "name"),
		Wins:   optional[int](f, "wins"),
		Losses: optional[int](f, "losses"),
		Draws:  optional[int](f, "draws"),
		Points: optional[int](f, "points"),
	}
	if f.err != nil {
		return fail(c, f.err, "update team")
	}
	team, err := h.Service.Update(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), patch)
	if err != nil {
		return fail(c, err, "update team")
	}
	return c.JSON(team)
}

func (h *TeamHandler) Delete(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return fail(c, err, "delete team")
	}
	return deleted(c, "Team")
}
