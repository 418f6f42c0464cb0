package handlers

import (
	"tournament-dashboard/middleware"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

type MatchHandler struct {
	Service *services.MatchService
}

type matchRequest struct {
	TournamentID string `json:"tournamentId"`
	HomeTeamID   string `json:"homeTeamId"`
	AwayTeamID   string `json:"awayTeamId"`
	HomeScore    *int   `json:"homeScore"`
	AwayScore    *int   `json:"awayScore"`
	MatchDate    string `json:"matchDate"`
	MatchTime    string `json:"matchTime"`
	Status       string `json:"status"`
}

func SetupMatchRoutes(api fiber.Router, h *MatchHandler, session fiber.Handler) {
	api.Get("/matches", h.List)
	api.Get("/matches/:id", h.Get)
	api.Post("/matches", session, h.Create)
	api.Patch("/matches/:id", session, h.Update)
	api.Delete("/matches/:id", session, h.Delete)
}

func (h *MatchHandler) List(c *fiber.Ctx) error {
	matches, err := h.Service.List(c.UserContext(), services.MatchFilter{
		TournamentID: c.Query("tournamentId"),
		HomeTeamID:   c.Query("homeTeamId"),
		AwayTeamID:   c.Query("awayTeamId"),
		TeamID:       c.Query("teamId"),
		Status:       c.Query("status"),
	})
	if err != nil {
		return fail(c, err, "fetch matches")
	}
	return c.JSON(matches)
}

func (h *MatchHandler) Get(c *fiber.Ctx) error {
	m, err := h.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "fetch match")
	}
	return c.JSON(m)
}

func (h *MatchHandler) Create(c *fiber.Ctx) error {
	var req matchRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, "create match")
	}
	m, err := h.Service.Create(c.UserContext(), middleware.CurrentActor(c), services.MatchInput(req))
	if err != nil {
		return fail(c, err, "create match")
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *MatchHandler) Update(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return fail(c, err, "update match")
	}
	patch := services.MatchPatch{
		HomeScore: nullable[int](f, "homeScore"),
		AwayScore: nullable[int](f, "awayScore"),
		MatchDate: optional[string](f, "matchDate"),
		MatchTime: optional[string](f, "matchTime"),
		Status:    optional[string](f, "status"),
	}
	if f.err != nil {
		return fail(c, f.err, "update match")
	}
	m, err := h.Service.Update(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), patch)
	if err != nil {
		return fail(c, err, "update match")
	}
	return c.JSON(m)
}

func (h *MatchHandler) Delete(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return fail(c, err, "delete match")
	}
	return deleted(c, "Match")
}
