package models

import (
	"time"

	"gorm.io/gorm"
)

type MissionStatus string

const (
	MissionStatusOpen       MissionStatus = "OPEN"
	MissionStatusInProgress MissionStatus = "IN_PROGRESS"
	MissionStatusCompleted  MissionStatus = "COMPLETED"
	MissionStatusCancelled  MissionStatus = "CANCELLED"
)

// BudgetRange buckets a mission budget when the creator does not name an
// explicit amount.
type BudgetRange string

const (
	BudgetUnder100  BudgetRange = "UNDER_100"
	Budget100To500  BudgetRange = "100_500"
	Budget500To2000 BudgetRange = "500_2000"
	BudgetOver2000  BudgetRange = "OVER_2000"
)

type Mission struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	CreatorID          uint64         `gorm:"not null;index" json:"creator_id"`
	AssignedDesignerID *uint64        `gorm:"index" json:"assigned_designer_id"`
	Title              string         `gorm:"type:varchar(500);not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	Category           string         `gorm:"type:varchar(50);not null;index" json:"category"`
	Deadline           *time.Time     `json:"deadline"`
	BudgetRange        BudgetRange    `gorm:"type:varchar(20)" json:"budget_range"`
	BudgetCents        *int64         `json:"budget_cents"`
	Status             MissionStatus  `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator          User       `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	AssignedDesigner *User      `gorm:"foreignKey:AssignedDesignerID" json:"assigned_designer,omitempty"`
	Proposals        []Proposal `gorm:"foreignKey:MissionID" json:"proposals,omitempty"`
	Deliveries       []Delivery `gorm:"foreignKey:MissionID" json:"deliveries,omitempty"`
}
