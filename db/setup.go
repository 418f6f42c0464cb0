package db

import (
	"fmt"
	"log"

	"tournament-dashboard/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres pool. Foreign keys are created explicitly in
// Migrate so that each relation gets exactly one constraint. Driver errors
// are translated so unique violations surface as gorm.ErrDuplicatedKey.
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
}

var constraints = []struct {
	model    interface{}
	relation string
}{
	{&models.Tournament{}, "Organizer"},
	{&models.Tournament{}, "Teams"},
	{&models.Tournament{}, "Matches"},
	{&models.Tournament{}, "Registrations"},
	{&models.Tournament{}, "Payments"},
	{&models.Team{}, "HomeMatches"},
	{&models.Team{}, "AwayMatches"},
	{&models.User{}, "Registrations"},
	{&models.User{}, "Payments"},
	{&models.User{}, "Accounts"},
	{&models.User{}, "Sessions"},
}

// Migrate creates tables, relation constraints and the partial unique index
// that allows one active registration per (tournament, user).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Tournament{},
		&models.Team{},
		&models.Match{},
		&models.Registration{},
		&models.Payment{},
		&models.Account{},
		&models.Session{},
		&models.VerificationToken{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	migrator := db.Migrator()
	for _, c := range constraints {
		if migrator.HasConstraint(c.model, c.relation) {
			continue
		}
		if err := migrator.CreateConstraint(c.model, c.relation); err != nil {
			return fmt.Errorf("create constraint %s: %w", c.relation, err)
		}
	}

	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_registrations_active_pair
		ON registrations (tournament_id, user_id) WHERE status <> 'CANCELLED'`).Error; err != nil {
		return fmt.Errorf("create active registration index: %w", err)
	}

	log.Println("✅ Database migrated")
	return nil
}
