package handlers

import (
	"tournament-dashboard/middleware"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

type PairingHandler struct {
	Service *services.PairingService
}

type pairingRequest struct {
	StartDate         string `json:"startDate"`
	MatchTime         string `json:"matchTime"`
	DaysBetweenRounds *int   `json:"daysBetweenRounds"`
}

func SetupPairingRoutes(api fiber.Router, h *PairingHandler, session fiber.Handler) {
	api.Post("/tournaments/:id/pairings", session, h.Generate)
}

// Generate accepts an empty body.
func (h *PairingHandler) Generate(c *fiber.Ctx) error {
	var req pairingRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return fail(c, err, "generate pairings")
		}
	}
	matches, err := h.Service.Generate(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), services.PairingInput(req))
	if err != nil {
		return fail(c, err, "generate pairings")
	}
	return c.Status(fiber.StatusCreated).JSON(matches)
}
