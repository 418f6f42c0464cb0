package models

import "time"

// Account links a user to an identity-provider account.
type Account struct {
	ID                string  `json:"id" gorm:"primaryKey"`
	UserID            string  `json:"userId" gorm:"not null;index"`
	Type              string  `json:"type" gorm:"not null"`
	Provider          string  `json:"provider" gorm:"not null;uniqueIndex:idx_accounts_provider_account"`
	ProviderAccountID string  `json:"providerAccountId" gorm:"not null;uniqueIndex:idx_accounts_provider_account"`
	RefreshToken      *string `json:"refresh_token" gorm:"type:text"`
	AccessToken       *string `json:"access_token" gorm:"type:text"`
	ExpiresAt         *int64  `json:"expires_at"`
	TokenType         *string `json:"token_type"`
	Scope             *string `json:"scope"`
	IDToken           *string `json:"id_token" gorm:"type:text"`
	SessionState      *string `json:"session_state"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Session is a server-side session record. SessionToken is the identifier
// carried inside signed bearer tokens.
type Session struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	SessionToken string    `json:"sessionToken" gorm:"uniqueIndex;not null"`
	UserID       string    `json:"userId" gorm:"not null;index"`
	Expires      time.Time `json:"expires" gorm:"not null;index"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.Expires.After(now)
}

// VerificationToken is keyed by (identifier, token).
type VerificationToken struct {
	Identifier string    `json:"identifier" gorm:"primaryKey"`
	Token      string    `json:"token" gorm:"primaryKey;uniqueIndex"`
	Expires    time.Time `json:"expires" gorm:"not null;index"`
}
