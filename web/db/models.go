package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"

	CommissionPending = "pending"
	CommissionPaid    = "paid"

	SubscriptionNone   = "none"
	SubscriptionActive = "active"
)

type UserProfile struct {
	gorm.Model
	UserRef  string `gorm:"uniqueIndex;size:64"` // id of the user in the identity store
	FullName string
	Email    string

	ReferredBy         *uint   `gorm:"index"` // profile that recruited this one, set once at creation
	ReferralCode       string  `gorm:"uniqueIndex;size:16"`
	RegistrationNumber *string `gorm:"uniqueIndex;size:16"` // NULL until assigned

	// all amounts in paise
	TotalEarnings    int64
	AvailableBalance int64
	WithdrawnAmount  int64

	SubscriptionStatus string `gorm:"default:none"`
}

type ReferralCommission struct {
	gorm.Model
	ReferrerID uint `gorm:"index"` // reward owner
	RefereeID  uint // triggering user's profile
	OrderID    *string

	// one row per trigger and level, enforced by the store
	TriggerUserID string `gorm:"size:64;uniqueIndex:idx_trigger_once,priority:1"`
	TriggerType   string `gorm:"size:32;uniqueIndex:idx_trigger_once,priority:2"`
	Level         int    `gorm:"uniqueIndex:idx_trigger_once,priority:3"`

	CommissionRate   float64
	CommissionAmount int64 // paise
	Status           string `gorm:"default:pending"`
}

type WithdrawalRequest struct {
	gorm.Model
	UserID      uint  `gorm:"index"` // profile id
	Amount      int64 // paise
	Destination string

	Status     string `gorm:"default:pending"`
	AdminNotes string

	RequestedAt time.Time
	ProcessedAt *time.Time
	ProcessedBy string
}
