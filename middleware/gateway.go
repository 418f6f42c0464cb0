package middleware

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ServiceToken guards machine-to-machine routes used by the identity
// provider. The bearer token must equal expected.
func ServiceToken(expected string) fiber.Handler {
	if expected == "" {
		log.Fatal("❌ SERVICE_TOKEN is not set, identity provider routes cannot be authenticated")
	}
	want := []byte(expected)

	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			log.Printf("🚫 [SERVICE_AUTH] Missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service token missing",
			})
		}

		if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			log.Printf("❌ [SERVICE_AUTH] Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service token",
			})
		}
		return c.Next()
	}
}
