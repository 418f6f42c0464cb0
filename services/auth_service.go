package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"tournament-dashboard/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService issues and resolves bearer tokens backed by Session rows.
// Revoking or expiring the row invalidates the token.
type AuthService struct {
	DB       *gorm.DB
	Signer   TokenSigner
	TTL      time.Duration
	DevLogin bool
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration, devLogin bool) *AuthService {
	return &AuthService{DB: db, Signer: TokenSigner{Secret: []byte(secret)}, TTL: ttl, DevLogin: devLogin}
}

// IssuedSession is returned to clients after login.
type IssuedSession struct {
	Token   string       `json:"token"`
	Expires time.Time    `json:"expires"`
	User    *models.User `json:"user"`
}

// Issue creates a session for userID and signs a token for it.
func (s *AuthService) Issue(ctx context.Context, userID string) (*IssuedSession, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return nil, notFound("User", err)
	}

	sess := &models.Session{
		ID:           uuid.NewString(),
		SessionToken: uuid.NewString(),
		UserID:       u.ID,
		Expires:      s.Signer.now().Add(s.TTL).UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, err
	}

	token, err := s.Signer.Sign(u.ID, sess.SessionToken, sess.Expires)
	if err != nil {
		return nil, err
	}
	log.Printf("🔑 [AUTH] session issued for %s", u.ID)
	return &IssuedSession{Token: token, Expires: sess.Expires, User: &u}, nil
}

// Resolve verifies token and returns its user with the role currently stored.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return nil, &UnauthorizedError{Message: "invalid or expired token"}
	}

	var sess models.Session
	err = s.DB.WithContext(ctx).
		Preload("User").
		First(&sess, "session_token = ? AND user_id = ?", claims.ID, claims.Subject).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnauthorizedError{Message: "session not found"}
		}
		return nil, err
	}
	if sess.Expired(s.Signer.now()) || sess.User == nil {
		return nil, &UnauthorizedError{Message: "session expired"}
	}
	return sess.User, nil
}

// Revoke deletes the session behind token.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return &UnauthorizedError{Message: "invalid or expired token"}
	}
	return s.DB.WithContext(ctx).Where("session_token = ?", claims.ID).Delete(&models.Session{}).Error
}

// LoginByEmail issues a session for an existing user without credentials.
// It is only available when development login is enabled.
func (s *AuthService) LoginByEmail(ctx context.Context, email string) (*IssuedSession, error) {
	if !s.DevLogin {
		return nil, forbidden("development login is disabled")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, validationf("email is required")
	}
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, notFound("User", err)
	}
	return s.Issue(ctx, u.ID)
}
