package models

import "time"

// Channel is the per-mission conversation between the creator and one
// designer. Transitions are narrated into it as system messages.
type Channel struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	MissionID      uint64    `gorm:"not null;uniqueIndex:idx_channels_mission_designer" json:"mission_id"`
	CreatorID      uint64    `gorm:"not null;index" json:"creator_id"`
	DesignerID     uint64    `gorm:"not null;uniqueIndex:idx_channels_mission_designer" json:"designer_id"`
	CreatorUnread  int       `gorm:"not null;default:0" json:"creator_unread"`
	DesignerUnread int       `gorm:"not null;default:0" json:"designer_unread"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Messages []Message `gorm:"foreignKey:ChannelID" json:"messages,omitempty"`
}
