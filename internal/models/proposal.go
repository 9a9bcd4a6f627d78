package models

import (
	"time"

	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "PENDING"
	ProposalStatusAccepted  ProposalStatus = "ACCEPTED"
	ProposalStatusRejected  ProposalStatus = "REJECTED"
	ProposalStatusWithdrawn ProposalStatus = "WITHDRAWN"
)

// Proposal is a designer's bid on an open mission. At most one proposal may
// exist per (mission, designer) pair.
type Proposal struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	MissionID  uint64         `gorm:"not null;uniqueIndex:idx_proposals_mission_designer" json:"mission_id"`
	DesignerID uint64         `gorm:"not null;uniqueIndex:idx_proposals_mission_designer" json:"designer_id"`
	Message    string         `gorm:"type:text;not null" json:"message"`
	PriceCents *int64         `json:"price_cents"`
	Status     ProposalStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"`

	// Relations
	Mission  Mission `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	Designer User    `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`
}
