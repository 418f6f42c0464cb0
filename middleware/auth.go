package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"tournament-dashboard/models"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

// SessionResolver maps a bearer token to the user it was issued for.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// bearerToken returns the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively. A raw header value without a scheme
// is accepted as the token itself.
func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return header
}

// SessionAuth requires a valid session token and stores the user's id, role
// and record in the request locals.
func SessionAuth(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}

		user, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			var unauthorized *services.UnauthorizedError
			if errors.As(err, &unauthorized) {
				log.Printf("🚫 [SESSION_AUTH] %s for %s", unauthorized.Message, c.Path())
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": unauthorized.Message})
			}
			log.Printf("❌ [SESSION_AUTH] resolve failed for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to authenticate"})
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_role", user.Role)
		c.Locals("user", user)
		c.Locals("token", token)
		return c.Next()
	}
}

// RequireRole rejects users whose role is not listed. It must run after
// SessionAuth.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(models.Role)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		log.Printf("🚫 [ROLE] %s (%s) denied on %s %s", CurrentActor(c).UserID, role, c.Method(), c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient role"})
	}
}

// CurrentActor returns the authenticated actor set by SessionAuth.
func CurrentActor(c *fiber.Ctx) services.Actor {
	id, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("user_role").(models.Role)
	return services.Actor{UserID: id, Role: role}
}

// CurrentUser returns the user record set by SessionAuth, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals("user").(*models.User)
	return u
}

// CurrentToken returns the bearer token accepted by SessionAuth.
func CurrentToken(c *fiber.Ctx) string {
	t, _ := c.Locals("token").(string)
	return t
}
