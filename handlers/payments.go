package handlers

import (
	"tournament-dashboard/middleware"
	"tournament-dashboard/models"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

type paymentRequest struct {
	UserID          string  `json:"userId"`
	TournamentID    string  `json:"tournamentId"`
	StripePaymentID *string `json:"stripePaymentId"`
	Amount          *int64  `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
}

func SetupPaymentRoutes(api fiber.Router, h *PaymentHandler, session fiber.Handler) {
	payments := api.Group("/payments", session)
	payments.Get("/", h.List)
	payments.Get("/:id", h.Get)

	admin := middleware.RequireRole(models.RoleAdmin)
	payments.Post("/", admin, h.Create)
	payments.Patch("/:id", admin, h.Update)
	payments.Delete("/:id", admin, h.Delete)
}

func (h *PaymentHandler) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.UserContext(), middleware.CurrentActor(c), services.PaymentFilter{
		UserID:       c.Query("userId"),
		TournamentID: c.Query("tournamentId"),
		Status:       c.Query("status"),
	})
	if err != nil {
		return fail(c, err, "fetch payments")
	}
	return c.JSON(list)
}

func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	p, err := h.Service.Get(c.UserContext(), middleware.CurrentActor(c), c.Params("id"))
	if err != nil {
		return fail(c, err, "fetch payment")
	}
	return c.JSON(p)
}

func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var req paymentRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, "create payment")
	}
	p, err := h.Service.Create(c.UserContext(), services.PaymentInput(req))
	if err != nil {
		return fail(c, err, "create payment")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *PaymentHandler) Update(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return fail(c, err, "update payment")
	}
	patch := services.PaymentPatch{
		StripePaymentID: nullable[string](f, "stripePaymentId"),
		Amount:          optional[int64](f, "amount"),
		Currency:        optional[string](f, "currency"),
		Status:          optional[string](f, "status"),
	}
	if f.err != nil {
		return fail(c, f.err, "update payment")
	}
	p, err := h.Service.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return fail(c, err, "update payment")
	}
	return c.JSON(p)
}

func (h *PaymentHandler) Delete(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err, "delete payment")
	}
	return deleted(c, "Payment")
}
