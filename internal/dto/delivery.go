package dto

import (
	"fmt"
	"time"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// DeliveryDTO represents a delivery in API responses. Asset references are
// exposed as download URLs, never as storage keys directly. FinalURL is
// nil until the payment is settled.
type DeliveryDTO struct {
	ID                 uint64                `json:"id"`
	MissionID          uint64                `json:"mission_id"`
	DesignerID         uint64                `json:"designer_id"`
	CreatorID          uint64                `json:"creator_id"`
	Status             models.DeliveryStatus `json:"status"`
	PaymentStatus      models.PaymentStatus  `json:"payment_status"`
	AssetKind          models.AssetKind      `json:"asset_kind"`
	AmountCents        int64                 `json:"amount_cents"`
	RevisionCount      int                   `json:"revision_count"`
	RevisionNote       string                `json:"revision_note,omitempty"`
	ProtectedURL       string                `json:"protected_url"`
	ProtectedExpiresAt time.Time             `json:"protected_expires_at"`
	FinalURL           *string               `json:"final_url"`
	FinalExpiresAt     *time.Time            `json:"final_expires_at"`
	PaidAt             *time.Time            `json:"paid_at"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// ToDeliveryDTO converts a Delivery model to DeliveryDTO. The final asset
// URL is attached only when payment_status is PAID, independently of what
// the caller loaded.
func ToDeliveryDTO(delivery models.Delivery) DeliveryDTO {
	dto := DeliveryDTO{
		ID:                 delivery.ID,
		MissionID:          delivery.MissionID,
		DesignerID:         delivery.DesignerID,
		CreatorID:          delivery.CreatorID,
		Status:             delivery.Status,
		PaymentStatus:      delivery.PaymentStatus,
		AssetKind:          delivery.AssetKind,
		AmountCents:        delivery.AmountCents,
		RevisionCount:      delivery.RevisionCount,
		RevisionNote:       delivery.RevisionNote,
		ProtectedURL:       assetURL(delivery.ProtectedRef),
		ProtectedExpiresAt: delivery.ProtectedExpiresAt,
		PaidAt:             delivery.PaidAt,
		CreatedAt:          delivery.CreatedAt,
		UpdatedAt:          delivery.UpdatedAt,
	}

	if delivery.PaymentStatus == models.PaymentStatusPaid && delivery.FinalRef != nil {
		url := assetURL(*delivery.FinalRef)
		dto.FinalURL = &url
		dto.FinalExpiresAt = delivery.FinalExpiresAt
	}

	return dto
}

// ToDeliveryDTOs converts a slice of deliveries
func ToDeliveryDTOs(deliveries []models.Delivery) []DeliveryDTO {
	items := make([]DeliveryDTO, len(deliveries))
	for i, delivery := range deliveries {
		items[i] = ToDeliveryDTO(delivery)
	}
	return items
}

func assetURL(ref string) string {
	return fmt.Sprintf("/api/assets/%s", ref)
}
