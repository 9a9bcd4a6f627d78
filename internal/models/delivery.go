package models

import (
	"time"

	"gorm.io/gorm"
)

type DeliveryStatus string

const (
	DeliveryStatusProtectedSent DeliveryStatus = "PROTECTED_SENT"
	DeliveryStatusNeedsRevision DeliveryStatus = "NEEDS_REVISION"
	DeliveryStatusValidated     DeliveryStatus = "VALIDATED"
	DeliveryStatusPaid          DeliveryStatus = "PAID"
	DeliveryStatusFinalSent     DeliveryStatus = "FINAL_SENT"
)

// PaymentStatus tracks the off-platform bank transfer independently of the
// delivery state. It is flipped by the designer's own attestation, never by
// the platform.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

type AssetKind string

const (
	AssetKindImage AssetKind = "image"
	AssetKindVideo AssetKind = "video"
)

// Delivery is the handover record for an assigned mission. One active
// delivery exists per (mission, designer); a NEEDS_REVISION delivery is
// mutated in place when the designer resubmits.
type Delivery struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	MissionID          uint64         `gorm:"not null;uniqueIndex:idx_deliveries_mission_designer" json:"mission_id"`
	DesignerID         uint64         `gorm:"not null;uniqueIndex:idx_deliveries_mission_designer" json:"designer_id"`
	CreatorID          uint64         `gorm:"not null;index" json:"creator_id"`
	ProtectedRef       string         `gorm:"type:varchar(255);not null;index" json:"protected_ref"`
	AssetKind          AssetKind      `gorm:"type:varchar(10);not null" json:"asset_kind"`
	AmountCents        int64          `gorm:"not null" json:"amount_cents"`
	Status             DeliveryStatus `gorm:"type:varchar(20);not null;default:'PROTECTED_SENT';index" json:"status"`
	PaymentStatus      PaymentStatus  `gorm:"type:varchar(10);not null;default:'PENDING'" json:"payment_status"`
	RevisionCount      int            `gorm:"not null;default:0" json:"revision_count"`
	RevisionNote       string         `gorm:"type:text" json:"revision_note"`
	FinalRef           *string        `gorm:"type:varchar(255);index" json:"final_ref"`
	ProtectedExpiresAt time.Time      `json:"protected_expires_at"`
	FinalExpiresAt     *time.Time     `json:"final_expires_at"`
	PaidAt             *time.Time     `json:"paid_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-"`

	// Relations
	Mission  Mission `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	Designer User    `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`
	Creator  User    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}
