package models

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentSucceeded, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment mirrors a charge captured by the external payment processor.
// Amount is in minor units of Currency.
type Payment struct {
	ID              string        `json:"id" gorm:"primaryKey"`
	UserID          string        `json:"userId" gorm:"not null;index"`
	TournamentID    string        `json:"tournamentId" gorm:"not null;index"`
	StripePaymentID *string       `json:"stripePaymentId" gorm:"uniqueIndex"`
	Amount          int64         `json:"amount" gorm:"not null"`
	Currency        string        `json:"currency" gorm:"type:varchar(3);not null;default:'usd'"`
	Status          PaymentStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	Timestamps

	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Tournament *Tournament `json:"tournament,omitempty" gorm:"foreignKey:TournamentID"`

	DisplayAmount string `json:"displayAmount,omitempty" gorm:"-"`
}
