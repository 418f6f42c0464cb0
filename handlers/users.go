package handlers

import (
	"tournament-dashboard/middleware"
	"tournament-dashboard/models"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Service *services.UserService
}

type userRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Image *string `json:"image"`
	Role  string  `json:"role"`
}

func SetupUserRoutes(api fiber.Router, h *UserHandler, session fiber.Handler) {
	users := api.Group("/users", session)
	admin := middleware.RequireRole(models.RoleAdmin)

	users.Get("/", h.List)
	users.Get("/:id", h.Get)
	users.Post("/", admin, h.Create)
	users.Patch("/:id", h.Update)
	users.Delete("/:id", admin, h.Delete)
	users.Post("/:id/image", h.UploadImage)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.Service.List(c.UserContext(), services.UserFilter{
		Query: c.Query("q"),
		Role:  c.Query("role"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		return fail(c, err, "fetch users")
	}
	return c.JSON(users)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	u, err := h.Service.Get(c.UserContext(), middleware.CurrentActor(c), c.Params("id"))
	if err != nil {
		return fail(c, err, "fetch user")
	}
	return c.JSON(u)
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req userRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, "create user")
	}
	u, err := h.Service.Create(c.UserContext(), services.UserInput(req))
	if err != nil {
		return fail(c, err, "create user")
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return fail(c, err, "update user")
	}
	patch := services.UserPatch{
		Name:          nullable[string](f, "name"),
		Image:         nullable[string](f, "image"),
		Email:         optional[string](f, "email"),
		Role:          optional[string](f, "role"),
		EmailVerified: nullable[string](f, "emailVerified"),
	}
	if f.err != nil {
		return fail(c, f.err, "update user")
	}
	u, err := h.Service.Update(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), patch)
	if err != nil {
		return fail(c, err, "update user")
	}
	return c.JSON(u)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err, "delete user")
	}
	return deleted(c, "User")
}

// UploadImage takes a multipart "image" file and stores it as the avatar.
func (h *UserHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, &services.ValidationError{Message: "image file is required"}, "upload image")
	}
	file, err := fh.Open()
	if err != nil {
		return fail(c, err, "upload image")
	}
	defer file.Close()

	u, err := h.Service.SetImage(c.UserContext(), middleware.CurrentActor(c), c.Params("id"),
		fh.Filename, fh.Header.Get(fiber.HeaderContentType), file)
	if err != nil {
		return fail(c, err, "upload image")
	}
	return c.JSON(u)
}
