package models

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "USER"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// CanOrganize reports whether the role may create and run tournaments.
func (r Role) CanOrganize() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

// User is the local identity record. Credentials live with the external
// identity provider; Accounts and Sessions only link to it.
type User struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	Name          *string    `json:"name"`
	Email         string     `json:"email,omitempty" gorm:"uniqueIndex;not null"`
	EmailVerified *time.Time `json:"emailVerified"`
	Image         *string    `json:"image"`
	Role          Role       `json:"role,omitempty" gorm:"type:varchar(16);not null;default:'USER'"`
	Timestamps

	OrganizedTournaments []Tournament   `json:"organizedTournaments,omitempty" gorm:"foreignKey:OrganizerID"`
	Registrations        []Registration `json:"registrations,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Payments             []Payment      `json:"payments,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Accounts             []Account      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Sessions             []Session      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	Counts *UserCounts `json:"counts,omitempty" gorm:"-"`
}

type UserCounts struct {
	Accounts int64 `json:"accounts"`
	Sessions int64 `json:"sessions"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
