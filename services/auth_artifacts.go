package services

import (
	"context"
	"time"

	"tournament-dashboard/models"
	"tournament-dashboard/repository"
	"tournament-dashboard/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountService manages identity-provider account links.
type AccountService struct {
	Repo *repository.GormRepository[models.Account]
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{Repo: repository.New[models.Account](db)}
}

type AccountPatch struct {
	RefreshToken Nullable[string]
	AccessToken  Nullable[string]
	ExpiresAt    Nullable[int64]
	TokenType    *string
	Scope        *string
	IDToken      Nullable[string]
	SessionState Nullable[string]
}

func (s *AccountService) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if a.UserID == "" || a.Type == "" || a.Provider == "" || a.ProviderAccountID == "" {
		return nil, validationf("userId, type, provider and providerAccountId are required")
	}
	a.ID = uuid.NewString()
	a.User = nil
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, duplicate("this provider account is already linked", missingParent("User", err))
	}
	return s.Get(ctx, a.ID)
}

func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.Repo.Get(ctx, id, repository.Preload{Association: "User"})
	if err != nil {
		return nil, notFound("Account", err)
	}
	return a, nil
}

func (s *AccountService) List(ctx context.Context, userID, provider string) ([]models.Account, error) {
	filters := repository.Filters{}
	filters.Set("user_id", userID)
	filters.Set("provider", provider)
	return s.Repo.List(ctx, repository.Query{
		Filters:  filters,
		Order:    "provider ASC",
		Preloads: []repository.Preload{{Association: "User"}},
	})
}

func (s *AccountService) Update(ctx context.Context, id string, p AccountPatch) (*models.Account, error) {
	fields := map[string]interface{}{}
	for column, v := range map[string]Nullable[string]{
		"refresh_token": p.RefreshToken,
		"access_token":  p.AccessToken,
		"id_token":      p.IDToken,
		"session_state": p.SessionState,
	} {
		if v.Set {
			fields[column] = v.Value
		}
	}
	if p.ExpiresAt.Set {
		fields["expires_at"] = p.ExpiresAt.Value
	}
	if v, ok := nonEmpty(p.TokenType); ok {
		fields["token_type"] = v
	}
	if v, ok := nonEmpty(p.Scope); ok {
		fields["scope"] = v
	}
	if err := s.Repo.Update(ctx, id, fields); err != nil {
		return nil, notFound("Account", err)
	}
	return s.Get(ctx, id)
}

func (s *AccountService) Delete(ctx context.Context, id string) error {
	return notFound("Account", s.Repo.Delete(ctx, id))
}

// SessionService exposes session rows to the identity provider.
type SessionService struct {
	Repo *repository.GormRepository[models.Session]
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{Repo: repository.New[models.Session](db)}
}

type SessionInput struct {
	SessionToken string
	UserID       string
	Expires      string
}

type SessionPatch struct {
	SessionToken *string
	Expires      *string
}

func parseInstant(field, v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		if d, derr := utils.ParseDate(v); derr == nil {
			return d, nil
		}
		return time.Time{}, validationf("%s must be an RFC 3339 timestamp", field)
	}
	return t.UTC(), nil
}

func (s *SessionService) Create(ctx context.Context, in SessionInput) (*models.Session, error) {
	if in.SessionToken == "" || in.UserID == "" || in.Expires == "" {
		return nil, validationf("sessionToken, userId and expires are required")
	}
	expires, err := parseInstant("expires", in.Expires)
	if err != nil {
		return nil, err
	}
	sess := &models.Session{ID: uuid.NewString(), SessionToken: in.SessionToken, UserID: in.UserID, Expires: expires}
	if err := s.Repo.Create(ctx, sess); err != nil {
		return nil, duplicate("session token already exists", missingParent("User", err))
	}
	return s.Get(ctx, sess.ID)
}

func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.Repo.Get(ctx, id, repository.Preload{Association: "User"})
	if err != nil {
		return nil, notFound("Session", err)
	}
	return sess, nil
}

func (s *SessionService) List(ctx context.Context, userID, sessionToken string) ([]models.Session, error) {
	filters := repository.Filters{}
	filters.Set("user_id", userID)
	filters.Set("session_token", sessionToken)
	return s.Repo.List(ctx, repository.Query{
		Filters:  filters,
		Order:    "expires DESC",
		Preloads: []repository.Preload{{Association: "User"}},
	})
}

func (s *SessionService) Update(ctx context.Context, id string, p SessionPatch) (*models.Session, error) {
	fields := map[string]interface{}{}
	if v, ok := nonEmpty(p.SessionToken); ok {
		fields["session_token"] = v
	}
	if v, ok := nonEmpty(p.Expires); ok {
		expires, err := parseInstant("expires", v)
		if err != nil {
			return nil, err
		}
		fields["expires"] = expires
	}
	if err := s.Repo.Update(ctx, id, fields); err != nil {
		return nil, duplicate("session token already exists", notFound("Session", err))
	}
	return s.Get(ctx, id)
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	return notFound("Session", s.Repo.Delete(ctx, id))
}

// VerificationTokenService stores one-time email verification tokens, keyed
// by (identifier, token).
type VerificationTokenService struct {
	DB *gorm.DB
}

func NewVerificationTokenService(db *gorm.DB) *VerificationTokenService {
	return &VerificationTokenService{DB: db}
}

type VerificationTokenInput struct {
	Identifier string
	Token      string
	Expires    string
}

func (s *VerificationTokenService) Create(ctx context.Context, in VerificationTokenInput) (*models.VerificationToken, error) {
	if in.Identifier == "" || in.Token == "" || in.Expires == "" {
		return nil, validationf("identifier, token and expires are required")
	}
	expires, err := parseInstant("expires", in.Expires)
	if err != nil {
		return nil, err
	}
	vt := &models.VerificationToken{Identifier: in.Identifier, Token: in.Token, Expires: expires}
	if err := s.DB.WithContext(ctx).Create(vt).Error; err != nil {
		return nil, duplicate("verification token already exists", err)
	}
	return vt, nil
}

func (s *VerificationTokenService) List(ctx context.Context, identifier string) ([]models.VerificationToken, error) {
	out := make([]models.VerificationToken, 0)
	db := s.DB.WithContext(ctx).Order("expires DESC")
	if identifier != "" {
		db = db.Where("identifier = ?", identifier)
	}
	if err := db.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *VerificationTokenService) Delete(ctx context.Context, identifier, token string) error {
	if identifier == "" || token == "" {
		return validationf("identifier and token are required")
	}
	res := s.DB.WithContext(ctx).Where("identifier = ? AND token = ?", identifier, token).Delete(&models.VerificationToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "Verification token"}
	}
	return nil
}
