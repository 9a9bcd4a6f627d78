package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusActive   SubscriptionStatus = "active"
)

// Subscription mirrors the payment processor's state for platform billing.
// It is activated by processor events only and is disjoint from the manual
// bank-transfer flow inside deliveries.
type Subscription struct {
	ID               uint64             `gorm:"primarykey" json:"id"`
	UserID           uint64             `gorm:"not null;uniqueIndex" json:"user_id"`
	Plan             string             `gorm:"type:varchar(50);not null" json:"plan"`
	Status           SubscriptionStatus `gorm:"type:varchar(20);not null;default:'inactive'" json:"status"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
