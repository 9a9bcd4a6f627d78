package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCreator  UserRole = "creator"
	RoleDesigner UserRole = "designer"
)

type User struct {
	ID           uint64   `gorm:"primarykey" json:"id"`
	Email        string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName  string   `gorm:"type:varchar(255);not null" json:"display_name"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"`
	// Free-form payout instructions (IBAN, bank name...). Settlement happens
	// off-platform; these are only echoed into the channel on validation.
	PayoutDetails string         `gorm:"type:text" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Missions   []Mission  `gorm:"foreignKey:CreatorID" json:"-"`
	Proposals  []Proposal `gorm:"foreignKey:DesignerID" json:"-"`
	Deliveries []Delivery `gorm:"foreignKey:DesignerID" json:"-"`
}
