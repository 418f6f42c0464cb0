package services

import (
	"context"

	"tournament-dashboard/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistrationStore runs registration writes that must be decided against a
// consistent view of the owning tournament.
type RegistrationStore interface {
	// Create inserts reg if check accepts the tournament and the number of
	// active registrations the user already holds for it.
	Create(ctx context.Context, reg *models.Registration, check func(t *models.Tournament, active int64) error) error
	// Transition moves registration id to status to if check accepts the
	// registration, its tournament and the tournament's approved count.
	Transition(ctx context.Context, id string, to models.RegistrationStatus, check func(reg *models.Registration, t *models.Tournament, approved int64) error) (*models.Registration, error)
}

// GormRegistrationStore serializes writes per tournament with a row lock on
// the tournament, always taken before the registration lock.
type GormRegistrationStore struct {
	DB *gorm.DB
}

func lockTournament(tx *gorm.DB, id string) (*models.Tournament, error) {
	var t models.Tournament
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound("Tournament", err)
	}
	return &t, nil
}

func (s *GormRegistrationStore) Create(ctx context.Context, reg *models.Registration, check func(t *models.Tournament, active int64) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := lockTournament(tx, reg.TournamentID)
		if err != nil {
			return err
		}

		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", reg.UserID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return &NotFoundError{Entity: "User"}
		}

		var active int64
		if err := tx.Model(&models.Registration{}).
			Where("tournament_id = ? AND user_id = ? AND status <> ?", reg.TournamentID, reg.UserID, models.RegistrationCancelled).
			Count(&active).Error; err != nil {
			return err
		}
		if err := check(t, active); err != nil {
			return err
		}

		return duplicate("user already has an active registration for this tournament", tx.Create(reg).Error)
	})
}

func (s *GormRegistrationStore) Transition(ctx context.Context, id string, to models.RegistrationStatus, check func(reg *models.Registration, t *models.Tournament, approved int64) error) (*models.Registration, error) {
	var out models.Registration
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var probe models.Registration
		if err := tx.Select("id", "tournament_id").First(&probe, "id = ?", id).Error; err != nil {
			return notFound("Registration", err)
		}

		t, err := lockTournament(tx, probe.TournamentID)
		if err != nil {
			return err
		}

		var reg models.Registration
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reg, "id = ?", id).Error; err != nil {
			return notFound("Registration", err)
		}

		var approved int64
		if err := tx.Model(&models.Registration{}).
			Where("tournament_id = ? AND status = ?", t.ID, models.RegistrationApproved).
			Count(&approved).Error; err != nil {
			return err
		}

		if err := check(&reg, t, approved); err != nil {
			return err
		}

		if err := tx.Model(&reg).Update("status", to).Error; err != nil {
			return duplicate("user already has an active registration for this tournament", err)
		}
		reg.Status = to
		out = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
