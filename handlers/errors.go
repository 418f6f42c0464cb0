package handlers

import (
	"errors"
	"log"

	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

// fail writes the {error} envelope for err. Domain errors keep their
// message; anything else is logged and reported as "Failed to <action>".
func fail(c *fiber.Ctx, err error, action string) error {
	var (
		notFound     *services.NotFoundError
		validation   *services.ValidationError
		conflict     *services.ConflictError
		forbidden    *services.ForbiddenError
		unauthorized *services.UnauthorizedError
		fiberErr     *fiber.Error
	)
	switch {
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound.Error()})
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validation.Error()})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": conflict.Error()})
	case errors.As(err, &forbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": forbidden.Error()})
	case errors.As(err, &unauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": unauthorized.Error()})
	case errors.Is(err, services.ErrStorageDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	log.Printf("❌ Failed to %s on %s %s: %v", action, c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to " + action})
}

// ErrorHandler renders errors that escape handlers (unknown routes, body
// limits, recovered panics) in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		log.Printf("❌ Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func deleted(c *fiber.Ctx, entity string) error {
	return c.JSON(fiber.Map{"message": entity + " deleted successfully"})
}
