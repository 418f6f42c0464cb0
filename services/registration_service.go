package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"tournament-dashboard/metrics"
	"tournament-dashboard/models"
	"tournament-dashboard/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationService struct {
	Repo  repository.Repository[models.Registration]
	Store RegistrationStore
}

func NewRegistrationService(db *gorm.DB) *RegistrationService {
	return &RegistrationService{
		Repo:  repository.New[models.Registration](db),
		Store: &GormRegistrationStore{DB: db},
	}
}

type RegisterInput struct {
	TournamentID string
	UserID       string
	Status       string
}

// Register creates a PENDING registration. UserID defaults to the actor.
func (s *RegistrationService) Register(ctx context.Context, actor Actor, in RegisterInput) (*models.Registration, error) {
	tournamentID := strings.TrimSpace(in.TournamentID)
	if tournamentID == "" {
		return nil, validationf("tournamentId is required")
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = actor.UserID
	}
	if in.Status != "" && models.RegistrationStatus(in.Status) != models.RegistrationPending {
		return nil, validationf("new registrations start as %s", models.RegistrationPending)
	}

	reg := &models.Registration{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		Status:       models.RegistrationPending,
	}
	err := s.Store.Create(ctx, reg, func(t *models.Tournament, active int64) error {
		return CheckNewRegistration(t, actor, userID, active)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📝 [REGISTRATION] %s registered for tournament %s (%s)", userID, tournamentID, reg.ID)
	return s.Get(ctx, actor, reg.ID)
}

// ChangeStatus applies one lifecycle transition. The decision and the write
// happen under the tournament lock held by the store.
func (s *RegistrationService) ChangeStatus(ctx context.Context, actor Actor, id string, to models.RegistrationStatus) (*models.Registration, error) {
	if to == "" {
		return nil, validationf("status is required")
	}

	var from models.RegistrationStatus
	_, err := s.Store.Transition(ctx, id, to, func(reg *models.Registration, t *models.Tournament, approved int64) error {
		from = reg.Status
		err := CheckTransition(reg, t, actor, to, approved)
		if errors.Is(err, ErrCapacityReached) {
			metrics.CapacityRejections.Inc()
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RegistrationTransitions.WithLabelValues(string(from), string(to)).Inc()
	log.Printf("🔁 [REGISTRATION] %s: %s -> %s by %s", id, from, to, actor.UserID)
	return s.Get(ctx, actor, id)
}

// Get returns a registration with its tournament and user. Plain users may
// only read their own.
func (s *RegistrationService) Get(ctx context.Context, actor Actor, id string) (*models.Registration, error) {
	reg, err := s.Repo.Get(ctx, id,
		repository.Preload{Association: "Tournament"},
		repository.Preload{Association: "User"},
	)
	if err != nil {
		return nil, notFound("Registration", err)
	}
	if !actor.SeesEverything() && reg.UserID != actor.UserID {
		return nil, forbidden("you can only view your own registrations")
	}
	return reg, nil
}

type RegistrationFilter struct {
	TournamentID string
	UserID       string
	Status       string
}

func (s *RegistrationService) List(ctx context.Context, actor Actor, f RegistrationFilter) ([]models.Registration, error) {
	filters := repository.Filters{}
	filters.Set("tournament_id", f.TournamentID)
	filters.Set("user_id", f.UserID)
	if f.Status != "" {
		if !models.RegistrationStatus(f.Status).Valid() {
			return nil, validationf("invalid registration status %q", f.Status)
		}
		filters.Set("status", f.Status)
	}
	if !actor.SeesEverything() {
		filters["user_id"] = actor.UserID
	}

	return s.Repo.List(ctx, repository.Query{
		Filters: filters,
		Order:   "registered_at DESC",
		Preloads: []repository.Preload{
			{Association: "Tournament"},
			{Association: "User"},
		},
	})
}

func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return notFound("Registration", err)
	}
	log.Printf("🗑️ [REGISTRATION] deleted %s", id)
	return nil
}
