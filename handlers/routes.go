package handlers

import (
	"context"
	"time"

	"tournament-dashboard/metrics"
	"tournament-dashboard/middleware"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Services bundles everything the HTTP layer serves.
type Services struct {
	Auth               *services.AuthService
	Tournaments        *services.TournamentService
	Teams              *services.TeamService
	Matches            *services.MatchService
	Pairings           *services.PairingService
	Registrations      *services.RegistrationService
	Payments           *services.PaymentService
	Users              *services.UserService
	Accounts           *services.AccountService
	Sessions           *services.SessionService
	VerificationTokens *services.VerificationTokenService
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SetupRoutes mounts /health, /metrics and the /api surface.
func SetupRoutes(app *fiber.App, s Services, db Pinger, serviceToken string) {
	app.Get("/health", Health(db))
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	session := middleware.SessionAuth(s.Auth)
	service := middleware.ServiceToken(serviceToken)

	api := app.Group("/api")
	SetupAuthRoutes(api, &AuthHandler{Service: s.Auth}, session, service)
	SetupTournamentRoutes(api, &TournamentHandler{Service: s.Tournaments}, session)
	SetupTeamRoutes(api, &TeamHandler{Service: s.Teams}, session)
	SetupMatchRoutes(api, &MatchHandler{Service: s.Matches}, session)
	SetupPairingRoutes(api, &PairingHandler{Service: s.Pairings}, session)
	SetupRegistrationRoutes(api, &RegistrationHandler{Service: s.Registrations}, session)
	SetupPaymentRoutes(api, &PaymentHandler{Service: s.Payments}, session)
	SetupUserRoutes(api, &UserHandler{Service: s.Users}, session)
	SetupIdentityRoutes(api, &IdentityHandler{
		Accounts:           s.Accounts,
		Sessions:           s.Sessions,
		VerificationTokens: s.VerificationTokens,
	}, service)
}

func Health(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": "database unreachable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
