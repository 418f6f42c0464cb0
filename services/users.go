package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"tournament-dashboard/models"
	"tournament-dashboard/repository"
	"tournament-dashboard/storage"
	"tournament-dashboard/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultUserLimit = 50
	maxUserLimit     = 100
)

type UserService struct {
	DB   *gorm.DB
	Repo repository.Repository[models.User]
	// Store is nil when uploads are disabled.
	Store storage.ObjectStore
}

func NewUserService(db *gorm.DB, store storage.ObjectStore) *UserService {
	return &UserService{DB: db, Repo: repository.New[models.User](db), Store: store}
}

type UserFilter struct {
	Query string
	Role  string
	Limit int
}

type UserInput struct {
	Email string
	Name  *string
	Image *string
	Role  string
}

type UserPatch struct {
	Name          Nullable[string]
	Image         Nullable[string]
	Email         *string
	Role          *string
	EmailVerified Nullable[string]
}

// adminOnly reports whether the patch touches fields only admins may change.
func (p UserPatch) adminOnly() bool {
	return p.Email != nil || p.Role != nil || p.EmailVerified.Set
}

// List searches users by name or email, newest first.
func (s *UserService) List(ctx context.Context, f UserFilter) ([]models.User, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxUserLimit {
		limit = defaultUserLimit
	}

	filters := repository.Filters{}
	if f.Role != "" {
		if !models.Role(f.Role).Valid() {
			return nil, validationf("invalid role %q", f.Role)
		}
		filters.Set("role", f.Role)
	}

	q := repository.Query{Filters: filters, Order: "created_at DESC", Limit: limit}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q.Scopes = append(q.Scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
		})
	}
	return s.Repo.List(ctx, q)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", validationf("a valid email is required")
	}
	return email, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role := models.RoleUser
	if in.Role != "" {
		role = models.Role(in.Role)
		if !role.Valid() {
			return nil, validationf("invalid role %q", in.Role)
		}
	}

	u := &models.User{ID: uuid.NewString(), Email: email, Name: in.Name, Image: in.Image, Role: role}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, duplicate("a user with this email already exists", err)
	}
	log.Printf("👤 [USER] created %s (%s)", u.Email, u.Role)
	return s.detail(ctx, u.ID, true)
}

// canSeePrivate reports whether actor may read id's registrations, payments
// and auth artifact counts: the user themself, organizers and admins.
func canSeePrivate(actor Actor, id string) bool {
	return actor.UserID == id || actor.SeesEverything()
}

// userDetailPreloads lists the associations returned with a user. Payments
// and registrations are only included for private reads.
func userDetailPreloads(private bool) []repository.Preload {
	preloads := []repository.Preload{
		{Association: "OrganizedTournaments", Order: "start_date DESC"},
	}
	if !private {
		return preloads
	}
	return append(preloads,
		repository.Preload{Association: "Registrations", Order: "registered_at DESC"},
		repository.Preload{Association: "Registrations.Tournament"},
		repository.Preload{Association: "Payments", Order: "created_at DESC"},
		repository.Preload{Association: "Payments.Tournament"},
	)
}

// Get returns a user with the tournaments they organize. The user themself,
// organizers and admins also get registrations, payments and auth artifact
// counts.
func (s *UserService) Get(ctx context.Context, actor Actor, id string) (*models.User, error) {
	return s.detail(ctx, id, canSeePrivate(actor, id))
}

func (s *UserService) detail(ctx context.Context, id string, private bool) (*models.User, error) {
	u, err := s.Repo.Get(ctx, id, userDetailPreloads(private)...)
	if err != nil {
		return nil, notFound("User", err)
	}
	if !private {
		u.Registrations, u.Payments = nil, nil
		return u, nil
	}

	counts := &models.UserCounts{}
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.Account{}).Where("user_id = ?", id).Count(&counts.Accounts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Session{}).Where("user_id = ?", id).Count(&counts.Sessions).Error; err != nil {
		return nil, err
	}
	u.Counts = counts
	for i := range u.Payments {
		decoratePayment(&u.Payments[i])
	}
	return u, nil
}

// Update lets users edit their own name and image; admins may also change
// email, role and email verification.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, p UserPatch) (*models.User, error) {
	if actor.UserID != id && !actor.IsAdmin() {
		return nil, forbidden("you can only edit your own profile")
	}
	if p.adminOnly() && !actor.IsAdmin() {
		return nil, forbidden("only admins can change email, role or verification")
	}

	fields := map[string]interface{}{}
	if p.Name.Set {
		fields["name"] = p.Name.Value
	}
	if p.Image.Set {
		fields["image"] = p.Image.Value
	}
	if p.Email != nil {
		email, err := normalizeEmail(*p.Email)
		if err != nil {
			return nil, err
		}
		fields["email"] = email
	}
	if p.Role != nil {
		if !models.Role(*p.Role).Valid() {
			return nil, validationf("invalid role %q", *p.Role)
		}
		fields["role"] = *p.Role
	}
	if p.EmailVerified.Set {
		var verified *time.Time
		if v := p.EmailVerified.Value; v != nil {
			t, err := time.Parse(time.RFC3339, *v)
			if err != nil {
				return nil, validationf("emailVerified must be an RFC 3339 timestamp")
			}
			verified = &t
		}
		fields["email_verified"] = verified
	}

	if err := s.Repo.Update(ctx, id, fields); err != nil {
		return nil, duplicate("a user with this email already exists", notFound("User", err))
	}
	return s.detail(ctx, id, canSeePrivate(actor, id))
}

// Delete removes a user with their sessions, accounts and registrations.
// Users who organize tournaments or have payments are kept.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			return notFound("User", err)
		}

		var organized, payments int64
		if err := tx.Model(&models.Tournament{}).Where("organizer_id = ?", id).Count(&organized).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Payment{}).Where("user_id = ?", id).Count(&payments).Error; err != nil {
			return err
		}
		if organized > 0 || payments > 0 {
			return conflictf("user organizes %d tournaments and has %d payments and cannot be deleted", organized, payments)
		}

		for _, child := range []interface{}{&models.Session{}, &models.Account{}, &models.Registration{}} {
			if err := tx.Where("user_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("delete user children: %w", err)
			}
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	log.Printf("🗑️ [USER] deleted %s", id)
	return nil
}

var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// SetImage uploads an avatar and points the user's image at it.
func (s *UserService) SetImage(ctx context.Context, actor Actor, id, filename, contentType string, body io.Reader) (*models.User, error) {
	if actor.UserID != id && !actor.IsAdmin() {
		return nil, forbidden("you can only change your own image")
	}
	if s.Store == nil {
		return nil, ErrStorageDisabled
	}
	ext, ok := imageTypes[contentType]
	if !ok {
		return nil, validationf("unsupported image type %q", contentType)
	}
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return nil, notFound("User", err)
	}

	key := path.Join("users", id, utils.SafeObjectName(filename, uuid.NewString()[:8])+ext)
	url, err := s.Store.Put(ctx, key, contentType, body)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, id, map[string]interface{}{"image": url}); err != nil {
		return nil, notFound("User", err)
	}
	log.Printf("🖼️ [USER] image for %s stored at %s", id, url)
	return s.detail(ctx, id, canSeePrivate(actor, id))
}
