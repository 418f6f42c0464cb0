package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tournament-dashboard/config"
	"tournament-dashboard/db"
	"tournament-dashboard/handlers"
	"tournament-dashboard/middleware"
	"tournament-dashboard/services"
	"tournament-dashboard/storage"
	"tournament-dashboard/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("failed to get database handle: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.ObjectStore
	r2, err := storage.NewR2Store(ctx, cfg.R2)
	if err != nil {
		log.Fatal("failed to initialize R2 client: ", err)
	}
	if r2 != nil {
		store = r2
	} else {
		log.Println("⚠️  R2 not configured, image uploads disabled")
	}

	svcs := handlers.Services{
		Auth:               services.NewAuthService(gdb, cfg.SessionSecret, cfg.SessionTTL, cfg.DevLoginEnabled),
		Tournaments:        services.NewTournamentService(gdb),
		Teams:              services.NewTeamService(gdb),
		Matches:            services.NewMatchService(gdb),
		Pairings:           services.NewPairingService(gdb),
		Registrations:      services.NewRegistrationService(gdb),
		Payments:           services.NewPaymentService(gdb),
		Users:              services.NewUserService(gdb, store),
		Accounts:           services.NewAccountService(gdb),
		Sessions:           services.NewSessionService(gdb),
		VerificationTokens: services.NewVerificationTokenService(gdb),
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(middleware.Metrics())

	handlers.SetupRoutes(app, svcs, sqlDB, cfg.ServiceToken)

	scheduler, err := workers.NewScheduler(gdb, cfg.SchedulerInterval)
	if err != nil {
		log.Fatal("failed to create scheduler: ", err)
	}
	scheduler.Start()

	if cfg.IdentitySyncURL != "" {
		workers.NewIdentitySyncWorker(gdb, cfg.IdentitySyncURL, cfg.IdentitySyncPath, cfg.IdentitySyncToken, cfg.IdentitySyncInterval).Start(ctx)
	} else {
		log.Println("⚠️  IDENTITY_SYNC_URL not set, identity sync disabled")
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}
}
