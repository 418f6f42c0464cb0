package handlers

import (
	"tournament-dashboard/models"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

// IdentityHandler serves the account, session and verification token
// records kept on behalf of the identity provider.
type IdentityHandler struct {
	Accounts           *services.AccountService
	Sessions           *services.SessionService
	VerificationTokens *services.VerificationTokenService
}

type sessionRequest struct {
	SessionToken string `json:"sessionToken"`
	UserID       string `json:"userId"`
	Expires      string `json:"expires"`
}

type verificationTokenRequest struct {
	Identifier string `json:"identifier"`
	Token      string `json:"token"`
	Expires    string `json:"expires"`
}

func SetupIdentityRoutes(api fiber.Router, h *IdentityHandler, serviceToken fiber.Handler) {
	accounts := api.Group("/accounts", serviceToken)
	accounts.Get("/", h.ListAccounts)
	accounts.Get("/:id", h.GetAccount)
	accounts.Post("/", h.CreateAccount)
	accounts.Patch("/:id", h.UpdateAccount)
	accounts.Delete("/:id", h.DeleteAccount)

	sessions := api.Group("/sessions", serviceToken)
	sessions.Get("/", h.ListSessions)
	sessions.Get("/:id", h.GetSession)
	sessions.Post("/", h.CreateSession)
	sessions.Patch("/:id", h.UpdateSession)
	sessions.Delete("/:id", h.DeleteSession)

	tokens := api.Group("/verification-tokens", serviceToken)
	tokens.Get("/", h.ListVerificationTokens)
	tokens.Post("/", h.CreateVerificationToken)
	tokens.Delete("/", h.DeleteVerificationToken)
}

func (h *IdentityHandler) ListAccounts(c *fiber.Ctx) error {
	list, err := h.Accounts.List(c.UserContext(), c.Query("userId"), c.Query("provider"))
	if err != nil {
		return fail(c, err, "fetch accounts")
	}
	return c.JSON(list)
}

func (h *IdentityHandler) GetAccount(c *fiber.Ctx) error {
	a, err := h.Accounts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "fetch account")
	}
	return c.JSON(a)
}

func (h *IdentityHandler) CreateAccount(c *fiber.Ctx) error {
	var a models.Account
	if err := bind(c, &a); err != nil {
		return fail(c, err, "create account")
	}
	created, err := h.Accounts.Create(c.UserContext(), &a)
	if err != nil {
		return fail(c, err, "create account")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *IdentityHandler) UpdateAccount(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return fail(c, err, "update account")
	}
	patch := services.AccountPatch{
		RefreshToken: nullable[string](f, "refresh_token"),
		AccessToken:  nullable[string](f, "access_token"),
		ExpiresAt:    nullable[int64](f, "expires_at"),
		TokenType:    optional[string](f, "token_type"),
		Scope:        optional[string](f, "scope"),
		IDToken:      nullable[string](f, "id_token"),
		SessionState: nullable[string](f, "session_state"),
	}
	if f.err != nil {
		return fail(c, f.err, "update account")
	}
	a, err := h.Accounts.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return fail(c, err, "update account")
	}
	return c.JSON(a)
}

func (h *IdentityHandler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.Accounts.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err, "delete account")
	}
	return deleted(c, "Account")
}

func (h *IdentityHandler) ListSessions(c *fiber.Ctx) error {
	list, err := h.Sessions.List(c.UserContext(), c.Query("userId"), c.Query("sessionToken"))
	if err != nil {
		return fail(c, err, "fetch sessions")
	}
	return c.JSON(list)
}

func (h *IdentityHandler) GetSession(c *fiber.Ctx) error {
	s, err := h.Sessions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "fetch session")
	}
	return c.JSON(s)
}

func (h *IdentityHandler) CreateSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, "create session")
	}
	s, err := h.Sessions.Create(c.UserContext(), services.SessionInput(req))
	if err != nil {
		return fail(c, err, "create session")
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

func (h *IdentityHandler) UpdateSession(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return fail(c, err, "update session")
	}
	patch := services.SessionPatch{
		SessionToken: optional[string](f, "sessionToken"),
		Expires:      optional[string](f, "expires"),
	}
	if f.err != nil {
		return fail(c, f.err, "update session")
	}
	s, err := h.Sessions.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return fail(c, err, "update session")
	}
	return c.JSON(s)
}

func (h *IdentityHandler) DeleteSession(c *fiber.Ctx) error {
	if err := h.Sessions.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err, "delete session")
	}
	return deleted(c, "Session")
}

func (h *IdentityHandler) ListVerificationTokens(c *fiber.Ctx) error {
	list, err := h.VerificationTokens.List(c.UserContext(), c.Query("identifier"))
	if err != nil {
		return fail(c, err, "fetch verification tokens")
	}
	return c.JSON(list)
}

func (h *IdentityHandler) CreateVerificationToken(c *fiber.Ctx) error {
	var req verificationTokenRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, "create verification token")
	}
	vt, err := h.VerificationTokens.Create(c.UserContext(), services.VerificationTokenInput(req))
	if err != nil {
		return fail(c, err, "create verification token")
	}
	return c.Status(fiber.StatusCreated).JSON(vt)
}

func (h *IdentityHandler) DeleteVerificationToken(c *fiber.Ctx) error {
	err := h.VerificationTokens.Delete(c.UserContext(), c.Query("identifier"), c.Query("token"))
	if err != nil {
		return fail(c, err, "delete verification token")
	}
	return deleted(c, "Verification token")
}
