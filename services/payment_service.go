package services

import (
	"context"
	"log"
	"strings"

	"tournament-dashboard/models"
	"tournament-dashboard/repository"
	"tournament-dashboard/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentService struct {
	DB   *gorm.DB
	Repo repository.Repository[models.Payment]
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{DB: db, Repo: repository.New[models.Payment](db)}
}

type PaymentInput struct {
	UserID          string
	TournamentID    string
	StripePaymentID *string
	Amount          *int64
	Currency        string
	Status          string
}

type PaymentPatch struct {
	StripePaymentID Nullable[string]
	Amount          *int64
	Currency        *string
	Status          *string
}

type PaymentFilter struct {
	UserID       string
	TournamentID string
	Status       string
}

const duplicateStripeID = "a payment with this stripePaymentId already exists"

func decoratePayment(p *models.Payment) {
	if display, err := utils.FormatMinorUnits(p.Amount, p.Currency); err == nil {
		p.DisplayAmount = display
	}
}

func (s *PaymentService) Create(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	if in.UserID == "" || in.TournamentID == "" || in.Amount == nil {
		return nil, validationf("userId, tournamentId and amount are required")
	}
	if *in.Amount < 0 {
		return nil, validationf("amount must not be negative")
	}
	cur, err := utils.NormalizeCurrency(in.Currency)
	if err != nil {
		return nil, validationf("%v", err)
	}
	status := models.PaymentPending
	if in.Status != "" {
		status = models.PaymentStatus(in.Status)
		if !status.Valid() {
			return nil, validationf("invalid payment status %q", in.Status)
		}
	}

	db := s.DB.WithContext(ctx)
	if err := db.First(&models.User{}, "id = ?", in.UserID).Error; err != nil {
		return nil, notFound("User", err)
	}
	if err := db.First(&models.Tournament{}, "id = ?", in.TournamentID).Error; err != nil {
		return nil, notFound("Tournament", err)
	}

	p := &models.Payment{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		TournamentID:    in.TournamentID,
		StripePaymentID: in.StripePaymentID,
		Amount:          *in.Amount,
		Currency:        cur,
		Status:          status,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, duplicate(duplicateStripeID, err)
	}
	log.Printf("💳 [PAYMENT] recorded %d %s for user %s in tournament %s", p.Amount, p.Currency, p.UserID, p.TournamentID)
	return s.get(ctx, p.ID)
}

func (s *PaymentService) get(ctx context.Context, id string) (*models.Payment, error) {
	p, err := s.Repo.Get(ctx, id,
		repository.Preload{Association: "User"},
		repository.Preload{Association: "Tournament"},
	)
	if err != nil {
		return nil, notFound("Payment", err)
	}
	decoratePayment(p)
	return p, nil
}

// Get returns a payment. Plain users may only read their own.
func (s *PaymentService) Get(ctx context.Context, actor Actor, id string) (*models.Payment, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.SeesEverything() && p.UserID != actor.UserID {
		return nil, forbidden("you can only view your own payments")
	}
	return p, nil
}

func (s *PaymentService) List(ctx context.Context, actor Actor, f PaymentFilter) ([]models.Payment, error) {
	filters := repository.Filters{}
	filters.Set("user_id", f.UserID)
	filters.Set("tournament_id", f.TournamentID)
	if f.Status != "" {
		if !models.PaymentStatus(f.Status).Valid() {
			return nil, validationf("invalid payment status %q", f.Status)
		}
		filters.Set("status", f.Status)
	}
	if !actor.SeesEverything() {
		filters["user_id"] = actor.UserID
	}

	list, err := s.Repo.List(ctx, repository.Query{
		Filters: filters,
		Order:   "created_at DESC",
		Preloads: []repository.Preload{
			{Association: "User"},
			{Association: "Tournament"},
		},
	})
	if err != nil {
		return nil, err
	}
	for i := range list {
		decoratePayment(&list[i])
	}
	return list, nil
}

func (s *PaymentService) Update(ctx context.Context, id string, p PaymentPatch) (*models.Payment, error) {
	fields := map[string]interface{}{}
	if p.StripePaymentID.Set {
		fields["stripe_payment_id"] = p.StripePaymentID.Value
	}
	if p.Amount != nil {
		if *p.Amount < 0 {
			return nil, validationf("amount must not be negative")
		}
		fields["amount"] = *p.Amount
	}
	if p.Currency != nil {
		if strings.TrimSpace(*p.Currency) == "" {
			return nil, validationf("currency must not be empty")
		}
		cur, err := utils.NormalizeCurrency(*p.Currency)
		if err != nil {
			return nil, validationf("%v", err)
		}
		fields["currency"] = cur
	}
	if v, ok := nonEmpty(p.Status); ok {
		if !models.PaymentStatus(v).Valid() {
			return nil, validationf("invalid payment status %q", v)
		}
		fields["status"] = v
	}

	if err := s.Repo.Update(ctx, id, fields); err != nil {
		return nil, duplicate(duplicateStripeID, notFound("Payment", err))
	}
	log.Printf("💳 [PAYMENT] updated %s", id)
	return s.get(ctx, id)
}

func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return notFound("Payment", err)
	}
	log.Printf("🗑️ [PAYMENT] deleted %s", id)
	return nil
}
